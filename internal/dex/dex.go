// Package dex implements the uniform DEX connector contract: pure quoting
// plus swap instruction construction, with no network access of its own.
// Quoting reads only from the Live Pool Cache; instruction building reads
// only its arguments. Grounded on pkg/exchanges/common.Gateway's
// uniform-capability-interface shape, generalized from CEX order submission
// to stateless on-chain quoting.
package dex

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrPoolAccountsTooShort is returned by instruction builders when the
// caller supplied fewer pool_accounts than the connector needs to locate
// the accounts a swap instruction must reference.
var ErrPoolAccountsTooShort = errors.New("dex: pool_accounts shorter than required for swap instruction")

// ErrMintNotInPoolAccounts is returned when a required mint does not appear
// among the leading pool_accounts entries the connector inspects.
var ErrMintNotInPoolAccounts = errors.New("dex: mint not found in pool_accounts")

// Quote is the result of a successful quote_exact_in call.
type Quote struct {
	AmountOut      uint64
	PriceImpactBps uint32
}

// Dex is the contract every connector implements: quote a trade exact-in,
// and materialize the on-chain instructions for it. QuoteExactIn returns
// (nil, nil) for "no route" (unknown pair, uncached pool) — a route
// genuinely not existing is not an error condition.
type Dex interface {
	// Name identifies the connector for logging; the router breaks ties by
	// connector index, not by name.
	Name() string

	// QuoteExactIn estimates the output amount and price impact for
	// swapping amountIn of inputMint into outputMint.
	QuoteExactIn(ctx context.Context, inputMint, outputMint solana.PublicKey, amountIn uint64) (*Quote, error)

	// BuildSwapInstructions constructs the instruction(s) for a swap of
	// amountIn of inputMint into outputMint with minOut as the minimum
	// acceptable output, paid to user, using poolAccounts as the set of
	// on-chain accounts the pool resolved to.
	BuildSwapInstructions(inputMint, outputMint solana.PublicKey, amountIn, minOut uint64, user solana.PublicKey, poolAccounts []solana.PublicKey) ([]solana.Instruction, error)
}
