package dex

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"solana-trading-core/internal/poolcache"
	"solana-trading-core/internal/quote"
	"solana-trading-core/internal/solanaids"
)

// requiredPoolAccountsForGenericSwap is the minimum pool_accounts length
// for the Orca/Raydium generic swap instruction shape: pool, two vaults,
// two mints, token program. The user account is passed separately, not as
// part of poolAccounts.
const requiredPoolAccountsForGenericSwap = 6

// OrcaDex quotes and builds swaps against an Orca whirlpool-shaped
// concentrated-liquidity pool, approximated here as constant-product (the
// connector's job is routing and instruction shape, not curve simulation
// beyond what the Quote Calculator already provides).
type OrcaDex struct {
	// lookup resolves a requested mint pair to a cached PoolState.
	// Populated by market-event consumers, not by this connector — the
	// cache itself only indexes PumpAmm pools by base mint, since
	// Orca/Raydium pools are identified by pool address, not mint, in
	// production routing tables.
	lookup func(mintA, mintB solana.PublicKey) (poolcache.PoolState, bool)
}

var _ Dex = (*OrcaDex)(nil)

// NewOrcaDex constructs an OrcaDex over lookup.
func NewOrcaDex(lookup func(mintA, mintB solana.PublicKey) (poolcache.PoolState, bool)) *OrcaDex {
	return &OrcaDex{lookup: lookup}
}

func (d *OrcaDex) Name() string { return "orca" }

func (d *OrcaDex) QuoteExactIn(ctx context.Context, inputMint, outputMint solana.PublicKey, amountIn uint64) (*Quote, error) {
	return quoteGenericConstantProduct(d.lookup, inputMint, outputMint, amountIn, poolcache.KindOrca)
}

func (d *OrcaDex) BuildSwapInstructions(inputMint, outputMint solana.PublicKey, amountIn, minOut uint64, user solana.PublicKey, poolAccounts []solana.PublicKey) ([]solana.Instruction, error) {
	return buildGenericSwapInstructions(solanaids.OrcaWhirlpoolProgramID, inputMint, outputMint, amountIn, minOut, user, poolAccounts)
}

func quoteGenericConstantProduct(lookup func(a, b solana.PublicKey) (poolcache.PoolState, bool), inputMint, outputMint solana.PublicKey, amountIn uint64, kind poolcache.Kind) (*Quote, error) {
	if lookup == nil {
		return nil, nil
	}
	state, ok := lookup(inputMint, outputMint)
	if !ok || state.Kind != kind {
		return nil, nil
	}

	amountOut, hasQuote, err := quote.QuoteOutputAmount(state, amountIn, inputMint)
	if err != nil || !hasQuote {
		return nil, nil
	}

	var inReserve, outReserve = state.ReserveA, state.ReserveB
	if inputMint.Equals(state.MintB) {
		inReserve, outReserve = state.ReserveB, state.ReserveA
	}
	impact := quote.PriceImpactBps(inReserve, outReserve, amountIn, amountOut)

	return &Quote{AmountOut: amountOut, PriceImpactBps: impact}, nil
}

func buildGenericSwapInstructions(programID, inputMint, outputMint solana.PublicKey, amountIn, minOut uint64, user solana.PublicKey, poolAccounts []solana.PublicKey) ([]solana.Instruction, error) {
	if len(poolAccounts) < requiredPoolAccountsForGenericSwap {
		return nil, ErrPoolAccountsTooShort
	}
	if !containsMint(poolAccounts, inputMint) || !containsMint(poolAccounts, outputMint) {
		return nil, ErrMintNotInPoolAccounts
	}

	disc := anchorDiscriminator("swap")
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

	return []solana.Instruction{solana.NewInstruction(programID, accounts, data)}, nil
}
