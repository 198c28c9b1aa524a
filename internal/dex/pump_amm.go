package dex

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"solana-trading-core/internal/poolcache"
	"solana-trading-core/internal/quote"
	"solana-trading-core/internal/solanaids"
)

// requiredPoolAccountsForSwap is the minimum pool_accounts length needed to
// locate every account a PumpAmm swap instruction references by fixed
// index. It is stricter than poolcache.MinUsablePoolAccounts, which only
// gates quoting readiness.
const requiredPoolAccountsForSwap = 14

// PumpAmmDex quotes and builds swaps against the pump.fun AMM (post-
// graduation constant-product pool) and, via QuoteBondingCurveExactIn,
// against the pre-graduation bonding curve for the same token. The
// pipeline's 6005 (bonding-curve-complete) retry re-quotes through the
// router, which reaches the graduated AMM via QuoteExactIn; nothing outside
// the tests calls QuoteBondingCurveExactIn.
type PumpAmmDex struct {
	cache *poolcache.Cache
}

var _ Dex = (*PumpAmmDex)(nil)

// NewPumpAmmDex constructs a PumpAmmDex reading pool state from cache.
func NewPumpAmmDex(cache *poolcache.Cache) *PumpAmmDex {
	return &PumpAmmDex{cache: cache}
}

func (d *PumpAmmDex) Name() string { return "pump_amm" }

// baseMintOf returns whichever of inputMint/outputMint is not wrapped SOL —
// the pump.fun AMM always quotes a token against native SOL.
func baseMintOf(inputMint, outputMint solana.PublicKey) solana.PublicKey {
	if outputMint.Equals(solanaids.WrappedSOLMint) {
		return inputMint
	}
	return outputMint
}

// QuoteExactIn implements Dex. Returns (nil, nil) when the pair's pool is
// not cached, or is not usable (fewer than poolcache.MinUsablePoolAccounts
// pool_accounts, or reserves not yet populated).
func (d *PumpAmmDex) QuoteExactIn(ctx context.Context, inputMint, outputMint solana.PublicKey, amountIn uint64) (*Quote, error) {
	baseMint := baseMintOf(inputMint, outputMint)
	state, ok := d.cache.GetPumpAmmStateByBaseMint(baseMint)
	if !ok || !state.IsUsable() {
		return nil, nil
	}

	amountOut, hasQuote, err := quote.QuoteOutputAmount(state, amountIn, inputMint)
	if err != nil || !hasQuote {
		return nil, nil
	}

	var inReserve, outReserve uint64
	if inputMint.Equals(state.BaseMint) {
		inReserve, outReserve = *state.BaseReserve, *state.QuoteReserve
	} else {
		inReserve, outReserve = *state.QuoteReserve, *state.BaseReserve
	}
	impact := quote.PriceImpactBps(uint128.From64(inReserve), uint128.From64(outReserve), amountIn, amountOut)

	return &Quote{AmountOut: amountOut, PriceImpactBps: impact}, nil
}

// QuoteBondingCurveExactIn quotes against the pre-graduation bonding curve
// for tokenMint. It never returns price impact (the spec's bonding-curve
// formula is the sole pricing path pre-graduation, so there is no spot
// price to compare execution price against); PriceImpactBps is always 0.
func (d *PumpAmmDex) QuoteBondingCurveExactIn(ctx context.Context, inputMint, tokenMint solana.PublicKey, amountIn uint64) (*Quote, error) {
	if !inputMint.Equals(solanaids.WrappedSOLMint) {
		return nil, nil
	}
	solReserves, tokenReserves, ok := d.cache.GetPumpBondingCurveByTokenMint(tokenMint)
	if !ok {
		return nil, nil
	}
	out := quote.PumpBondingCurveOutputAmount(solReserves, tokenReserves, amountIn)
	if out == 0 {
		return nil, nil
	}
	return &Quote{AmountOut: out}, nil
}

// BuildSwapInstructions implements Dex. poolAccounts must contain at least
// requiredPoolAccountsForSwap entries, with the base token mint and wrapped
// SOL mint both present among the first six (the fixed prefix every
// pump.fun AMM pool account list carries), and is otherwise treated as an
// opaque resolved account list — the same shape
// BuildPumpAmmSwapInstructions below exposes for callers that already hold
// a pool_accounts slice without a live PumpAmmDex.
func (d *PumpAmmDex) BuildSwapInstructions(inputMint, outputMint solana.PublicKey, amountIn, minOut uint64, user solana.PublicKey, poolAccounts []solana.PublicKey) ([]solana.Instruction, error) {
	return BuildPumpAmmSwapInstructions(inputMint, outputMint, amountIn, minOut, user, poolAccounts, nil)
}

// BuildPumpAmmSwapInstructions is the static form of instruction building,
// usable without a live cache (e.g. from golden-replay fixtures). referral
// is an optional referral fee-receiving account.
func BuildPumpAmmSwapInstructions(inputMint, outputMint solana.PublicKey, amountIn, minOut uint64, user solana.PublicKey, poolAccounts []solana.PublicKey, referral *solana.PublicKey) ([]solana.Instruction, error) {
	if len(poolAccounts) < requiredPoolAccountsForSwap {
		return nil, ErrPoolAccountsTooShort
	}

	prefix := poolAccounts[:6]
	if !containsMint(prefix, inputMint) || !containsMint(prefix, outputMint) {
		return nil, ErrMintNotInPoolAccounts
	}

	ixName := "buy"
	if inputMint.Equals(outputMint) {
		return nil, ErrMintNotInPoolAccounts
	}
	if !inputMint.Equals(solanaids.WrappedSOLMint) {
		ixName = "sell"
	}

	disc := anchorDiscriminator(ixName)
	data := make([]byte, 8+8+8)
	copy(data, disc[:])
	putUint64LE(data[8:16], amountIn)
	putUint64LE(data[16:24], minOut)

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(user, true, true),
	}
	for _, acct := range poolAccounts {
		accounts = append(accounts, solana.NewAccountMeta(acct, true, false))
	}
	if referral != nil {
		accounts = append(accounts, solana.NewAccountMeta(*referral, false, false))
	}

	return []solana.Instruction{solana.NewInstruction(solanaids.PumpAmmProgramID, accounts, data)}, nil
}

func containsMint(accounts []solana.PublicKey, mint solana.PublicKey) bool {
	for _, a := range accounts {
		if a.Equals(mint) {
			return true
		}
	}
	return false
}
