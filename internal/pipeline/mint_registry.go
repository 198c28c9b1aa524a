package pipeline

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// MintRegistry answers "is this mint's decimals known" for the
// mint-decimals check. Populated by market-event consumers as pools are
// discovered; the pipeline itself only reads it.
type MintRegistry struct {
	mu       sync.RWMutex
	decimals map[solana.PublicKey]uint8
}

// NewMintRegistry constructs an empty registry.
func NewMintRegistry() *MintRegistry {
	return &MintRegistry{decimals: make(map[solana.PublicKey]uint8)}
}

// Set records mint's decimals.
func (r *MintRegistry) Set(mint solana.PublicKey, decimals uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decimals[mint] = decimals
}

// Decimals returns mint's decimals, and whether it is known.
func (r *MintRegistry) Decimals(mint solana.PublicKey) (uint8, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decimals[mint]
	return d, ok
}
