// Package quote implements the pure AMM math shared by every DEX
// connector: constant-product quoting, the pump.fun bonding-curve
// formula, slippage application, and price-impact computation. No
// network or cache access happens here.
package quote

import (
	"errors"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"solana-trading-core/internal/poolcache"
)

// ErrUnknownMint is returned when input_mint belongs to neither side of
// the pool.
var ErrUnknownMint = errors.New("quote: input_mint belongs to neither side of the pool")

// DefaultFeeBpsPumpAmm and DefaultFeeBpsConstantProduct are the
// fee defaults used when a pool variant does not carry an explicit
// fee_bps.
const (
	DefaultFeeBpsPumpAmm          = 125
	DefaultFeeBpsConstantProduct = 30
)

// QuoteOutputAmount is the pure function quote_output_amount: identifies
// input/output sides by matching inputMint to one of the pool's mints,
// then applies variant-specific constant-product math using 128-bit
// intermediates. Returns (0, false, nil) for zero reserves or zero
// amountIn (quote optional, not an error); returns ErrUnknownMint when
// inputMint matches neither side of the pool, or when the pool kind is not
// PumpAmm, Orca or Raydium.
func QuoteOutputAmount(state poolcache.PoolState, amountIn uint64, inputMint solana.PublicKey) (uint64, bool, error) {
	switch state.Kind {
	case poolcache.KindPumpAmm:
		return quotePumpAmm(state, amountIn, inputMint)
	case poolcache.KindOrca, poolcache.KindRaydium:
		return quoteConstantProductAB(state, amountIn, inputMint)
	default:
		return 0, false, ErrUnknownMint
	}
}

func quotePumpAmm(state poolcache.PoolState, amountIn uint64, inputMint solana.PublicKey) (uint64, bool, error) {
	var inReserve, outReserve uint64
	switch {
	case inputMint.Equals(state.BaseMint):
		if state.BaseReserve == nil || state.QuoteReserve == nil {
			return 0, false, nil
		}
		inReserve, outReserve = *state.BaseReserve, *state.QuoteReserve
	case inputMint.Equals(state.QuoteMint):
		if state.BaseReserve == nil || state.QuoteReserve == nil {
			return 0, false, nil
		}
		inReserve, outReserve = *state.QuoteReserve, *state.BaseReserve
	default:
		return 0, false, ErrUnknownMint
	}

	return constantProductAmountOut(inReserve, outReserve, amountIn, DefaultFeeBpsPumpAmm)
}

func quoteConstantProductAB(state poolcache.PoolState, amountIn uint64, inputMint solana.PublicKey) (uint64, bool, error) {
	feeBps := state.FeeBps
	if feeBps == 0 {
		feeBps = DefaultFeeBpsConstantProduct
	}

	var inReserve, outReserve uint128.Uint128
	switch {
	case inputMint.Equals(state.MintA):
		inReserve, outReserve = state.ReserveA, state.ReserveB
	case inputMint.Equals(state.MintB):
		inReserve, outReserve = state.ReserveB, state.ReserveA
	default:
		return 0, false, ErrUnknownMint
	}

	return constantProductAmountOutU128(inReserve, outReserve, amountIn, feeBps)
}

// constantProductAmountOut implements
//
//	amount_out = (amount_in * (10_000 - fee_bps) * out_reserve)
//	             / (in_reserve * 10_000 + amount_in * (10_000 - fee_bps))
//
// using 128-bit intermediates, for reserves supplied as plain uint64s
// (the PumpAmm variant).
func constantProductAmountOut(inReserve, outReserve, amountIn uint64, feeBps uint16) (uint64, bool, error) {
	if amountIn == 0 || inReserve == 0 || outReserve == 0 {
		return 0, false, nil
	}
	return constantProductAmountOutU128(uint128.From64(inReserve), uint128.From64(outReserve), amountIn, feeBps)
}

// constantProductAmountOutU128 is the 128-bit-reserve form used by
// Orca/Raydium, where reserves are already stored as uint128.
func constantProductAmountOutU128(inReserve, outReserve uint128.Uint128, amountIn uint64, feeBps uint16) (uint64, bool, error) {
	if amountIn == 0 || inReserve.IsZero() || outReserve.IsZero() {
		return 0, false, nil
	}

	feeFactor := uint128.From64(uint64(10_000 - feeBps))
	amountInU := uint128.From64(amountIn)

	numerator := amountInU.Mul(feeFactor).Mul(outReserve)
	denominator := inReserve.Mul(uint128.From64(10_000)).Add(amountInU.Mul(feeFactor))

	if denominator.IsZero() {
		return 0, false, nil
	}

	out := numerator.Div(denominator)
	if !out.Big().IsUint64() {
		// A 128-bit intermediate legitimately overflowing uint64 output
		// indicates a caller has supplied reserves far outside any real
		// on-chain pool; treat as "no quote" rather than truncate.
		return 0, false, nil
	}
	return out.Big().Uint64(), true, nil
}

// PumpBondingCurveOutputAmount implements the pre-graduation pump.fun
// bonding-curve formula using math/big, matching the pack's own pump SDK
// shape: tokens_out = sol_in * token_reserves / (sol_reserves + sol_in).
// This is the pricing path for the PumpBondingCurve pool kind, distinct
// from the post-graduation constant-product AMM path above.
func PumpBondingCurveOutputAmount(solReserves, tokenReserves, solIn uint64) uint64 {
	if solIn == 0 || tokenReserves == 0 {
		return 0
	}
	numerator := new(big.Int).Mul(big.NewInt(0).SetUint64(solIn), big.NewInt(0).SetUint64(tokenReserves))
	denominator := new(big.Int).Add(big.NewInt(0).SetUint64(solReserves), big.NewInt(0).SetUint64(solIn))
	out := new(big.Int).Div(numerator, denominator)
	return out.Uint64()
}

// PriceImpactBps computes the price-impact of trading amountIn against
// the given reserves, as the basis-point gap between the pool's spot
// price and this trade's effective execution price. Non-decreasing in
// amountIn by construction (larger trades move price further from spot).
func PriceImpactBps(inReserve, outReserve uint128.Uint128, amountIn, amountOut uint64) uint32 {
	if inReserve.IsZero() || outReserve.IsZero() || amountOut == 0 {
		return 0
	}

	// spot = outReserve / inReserve, exec = amountOut / amountIn, both
	// scaled by 1e18 to preserve precision in integer division.
	scale := uint128.From64(1_000_000_000_000_000_000)

	spot := outReserve.Mul(scale).Div(inReserve)
	exec := uint128.From64(amountOut).Mul(scale).Div(uint128.From64(amountIn))

	if spot.Cmp(exec) <= 0 {
		return 0
	}

	impact := spot.Sub(exec).Mul(uint128.From64(10_000)).Div(spot)
	if !impact.Big().IsUint64() || impact.Big().Uint64() > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(impact.Big().Uint64())
}

// ApplySlippageMinOut computes floor(amountOut * (10_000 - slippageBps) /
// 10_000) using 128-bit intermediates. slippageBps == 0 leaves amountOut
// unchanged; slippageBps >= 10_000 yields 0.
func ApplySlippageMinOut(amountOut uint64, slippageBps uint64) uint64 {
	if slippageBps >= 10_000 {
		return 0
	}
	if slippageBps == 0 {
		return amountOut
	}
	num := uint128.From64(amountOut).Mul(uint128.From64(10_000 - slippageBps))
	return num.Div(uint128.From64(10_000)).Big().Uint64()
}
