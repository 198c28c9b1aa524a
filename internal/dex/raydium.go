package dex

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"solana-trading-core/internal/poolcache"
	"solana-trading-core/internal/solanaids"
)

// RaydiumDex quotes and builds swaps against a Raydium constant-product
// pool, sharing the generic constant-product quoting and instruction
// building OrcaDex uses — the two connectors differ only in program id and
// pool kind.
type RaydiumDex struct {
	lookup func(mintA, mintB solana.PublicKey) (poolcache.PoolState, bool)
}

var _ Dex = (*RaydiumDex)(nil)

// NewRaydiumDex constructs a RaydiumDex. See NewOrcaDex for lookup's contract.
func NewRaydiumDex(lookup func(mintA, mintB solana.PublicKey) (poolcache.PoolState, bool)) *RaydiumDex {
	return &RaydiumDex{lookup: lookup}
}

func (d *RaydiumDex) Name() string { return "raydium" }

func (d *RaydiumDex) QuoteExactIn(ctx context.Context, inputMint, outputMint solana.PublicKey, amountIn uint64) (*Quote, error) {
	return quoteGenericConstantProduct(d.lookup, inputMint, outputMint, amountIn, poolcache.KindRaydium)
}

func (d *RaydiumDex) BuildSwapInstructions(inputMint, outputMint solana.PublicKey, amountIn, minOut uint64, user solana.PublicKey, poolAccounts []solana.PublicKey) ([]solana.Instruction, error) {
	return buildGenericSwapInstructions(solanaids.RaydiumAMMProgramID, inputMint, outputMint, amountIn, minOut, user, poolAccounts)
}
