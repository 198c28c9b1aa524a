package poolcache

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// Kind discriminates PoolState variants. PoolState is a closed sum type:
// each variant owns its reserve fields directly, never an open
// polymorphic hierarchy.
type Kind string

const (
	KindPumpAmm          Kind = "PumpAmm"
	KindPumpBondingCurve Kind = "PumpBondingCurve"
	KindOrca             Kind = "Orca"
	KindRaydium          Kind = "Raydium"
)

// MinUsablePoolAccounts is the minimum pool_accounts length for a
// PumpAmm pool to participate in quoting.
const MinUsablePoolAccounts = 12

// PoolState is a tagged variant over the three supported DEX pool
// shapes. Exactly the fields of the variant named by Kind are
// meaningful; the rest are zero values.
type PoolState struct {
	Kind Kind

	// PumpAmm fields.
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	BaseReserve           *uint64
	QuoteReserve          *uint64
	PoolAccounts          []solana.PublicKey
	Creator               *solana.PublicKey

	// PumpBondingCurve fields. BaseMint doubles as the token mint (the
	// other side is always native SOL, pre-graduation).
	SolReserves   *uint64
	TokenReserves *uint64

	// Orca / Raydium fields (mint_a/mint_b take the place of base/quote).
	MintA       solana.PublicKey
	MintB       solana.PublicKey
	ReserveA    uint128.Uint128
	ReserveB    uint128.Uint128
	FeeBps      uint16
	TickSpacing *uint16 // Orca only
}

// NewPumpAmm constructs an uninitialised-reserve PumpAmm PoolState. Pass
// pool_accounts separately via WithPoolAccounts once known.
func NewPumpAmm(baseMint, quoteMint, poolBaseTokenAccount, poolQuoteTokenAccount solana.PublicKey) PoolState {
	return PoolState{
		Kind:                  KindPumpAmm,
		BaseMint:              baseMint,
		QuoteMint:             quoteMint,
		PoolBaseTokenAccount:  poolBaseTokenAccount,
		PoolQuoteTokenAccount: poolQuoteTokenAccount,
	}
}

// WithReserves returns a copy of s with base/quote reserves populated
// (PumpAmm) — only usable pools (populated reserves and at least
// MinUsablePoolAccounts pool_accounts; see IsUsable) participate in
// quoting.
func (s PoolState) WithReserves(base, quote uint64) PoolState {
	s.BaseReserve = &base
	s.QuoteReserve = &quote
	return s
}

// WithPoolAccounts returns a copy of s with pool_accounts populated.
// pool_accounts.len() must be 0 (uninitialised placeholder) or >= 12
// (usable) by the invariant in the spec; this constructor does not
// enforce that — callers decide what they store, the cache enforces
// usability at read time.
func (s PoolState) WithPoolAccounts(accounts []solana.PublicKey) PoolState {
	s.PoolAccounts = accounts
	return s
}

// WithCreator returns a copy of s with the creator account populated.
func (s PoolState) WithCreator(creator solana.PublicKey) PoolState {
	s.Creator = &creator
	return s
}

// IsUsable reports whether this PoolState's pool_accounts are long
// enough to build a swap (>= MinUsablePoolAccounts), and its reserves
// are populated.
func (s PoolState) IsUsable() bool {
	switch s.Kind {
	case KindPumpAmm:
		return len(s.PoolAccounts) >= MinUsablePoolAccounts && s.BaseReserve != nil && s.QuoteReserve != nil
	case KindOrca, KindRaydium:
		return true
	default:
		return false
	}
}

// NewPumpBondingCurve constructs an uninitialised-reserve pre-graduation
// pump.fun bonding-curve PoolState for tokenMint.
func NewPumpBondingCurve(tokenMint solana.PublicKey) PoolState {
	return PoolState{
		Kind:     KindPumpBondingCurve,
		BaseMint: tokenMint,
	}
}

// WithBondingCurveReserves returns a copy of s with sol/token reserves
// populated (PumpBondingCurve only).
func (s PoolState) WithBondingCurveReserves(sol, token uint64) PoolState {
	s.SolReserves = &sol
	s.TokenReserves = &token
	return s
}

// NewOrca constructs an Orca concentrated-liquidity PoolState.
func NewOrca(mintA, mintB solana.PublicKey, reserveA, reserveB uint128.Uint128, feeBps uint16, tickSpacing *uint16) PoolState {
	return PoolState{
		Kind:        KindOrca,
		MintA:       mintA,
		MintB:       mintB,
		ReserveA:    reserveA,
		ReserveB:    reserveB,
		FeeBps:      feeBps,
		TickSpacing: tickSpacing,
	}
}

// NewRaydium constructs a Raydium constant-product PoolState.
func NewRaydium(mintA, mintB solana.PublicKey, reserveA, reserveB uint128.Uint128, feeBps uint16) PoolState {
	return PoolState{
		Kind:     KindRaydium,
		MintA:    mintA,
		MintB:    mintB,
		ReserveA: reserveA,
		ReserveB: reserveB,
		FeeBps:   feeBps,
	}
}
