// Package router composes quotes across DEX connectors: best single-hop
// quote by fan-out, and best two-hop route over a caller-supplied
// intermediate-mint candidate set. No on-chain mint-graph discovery lives
// here — the candidate set is an input, not something the router derives.
package router

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	"solana-trading-core/internal/dex"
	"solana-trading-core/internal/quote"
)

// RoutedQuote pairs a Quote with the index of the connector that produced
// it, for tie-breaking and instruction building.
type RoutedQuote struct {
	DexIndex int
	Dex      dex.Dex
	Quote    dex.Quote
}

// Hop is one leg of a two-hop plan.
type Hop struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	RoutedQuote
}

// Plan is the result of BuildBestHops2PlanExactIn.
type Plan struct {
	Hops        [2]Hop
	ExpectedOut uint64
	MinOut      uint64
}

// Router fans quote requests out across a fixed set of connectors.
type Router struct {
	dexes []dex.Dex
}

// New constructs a Router over dexes. Index order is preserved and used as
// the tie-break key in BestQuoteExactIn.
func New(dexes []dex.Dex) *Router {
	return &Router{dexes: dexes}
}

// BestQuoteExactIn queries every connector concurrently and returns the one
// with the maximum amount_out, ties broken by lowest dex index. Returns
// (nil, nil) if every connector returns no quote.
func (r *Router) BestQuoteExactIn(ctx context.Context, inputMint, outputMint solana.PublicKey, amountIn uint64) (*RoutedQuote, error) {
	results := make([]*dex.Quote, len(r.dexes))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range r.dexes {
		i, d := i, d
		g.Go(func() error {
			q, err := d.QuoteExactIn(gctx, inputMint, outputMint, amountIn)
			if err != nil {
				return err
			}
			results[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *RoutedQuote
	for i, q := range results {
		if q == nil {
			continue
		}
		if best == nil || q.AmountOut > best.Quote.AmountOut {
			best = &RoutedQuote{DexIndex: i, Dex: r.dexes[i], Quote: *q}
		}
	}
	return best, nil
}

// CumulativeMinOut applies slippage to the final hop's amount_out only;
// intermediate hops contribute no slippage to the floor.
func CumulativeMinOut(quotes []dex.Quote, slippageBps uint64) uint64 {
	if len(quotes) == 0 {
		return 0
	}
	last := quotes[len(quotes)-1]
	return quote.ApplySlippageMinOut(last.AmountOut, slippageBps)
}

// BuildBestHops2PlanExactIn tries every candidate intermediate mint
// reachable in one hop from inputMint, quotes in→M then M→outputMint, and
// picks the pair maximizing the second hop's amount_out. Returns (nil, nil)
// if no candidate produces a complete two-hop route.
func (r *Router) BuildBestHops2PlanExactIn(ctx context.Context, inputMint, outputMint solana.PublicKey, amountIn, slippageBps uint64, candidateIntermediateMints []solana.PublicKey) (*Plan, error) {
	var best *Plan

	for _, mid := range candidateIntermediateMints {
		hop1, err := r.BestQuoteExactIn(ctx, inputMint, mid, amountIn)
		if err != nil {
			return nil, err
		}
		if hop1 == nil || hop1.Quote.AmountOut == 0 {
			continue
		}

		hop2, err := r.BestQuoteExactIn(ctx, mid, outputMint, hop1.Quote.AmountOut)
		if err != nil {
			return nil, err
		}
		if hop2 == nil || hop2.Quote.AmountOut == 0 {
			continue
		}

		if best == nil || hop2.Quote.AmountOut > best.ExpectedOut {
			expectedOut := hop2.Quote.AmountOut
			best = &Plan{
				Hops: [2]Hop{
					{InputMint: inputMint, OutputMint: mid, RoutedQuote: *hop1},
					{InputMint: mid, OutputMint: outputMint, RoutedQuote: *hop2},
				},
				ExpectedOut: expectedOut,
				MinOut:      quote.ApplySlippageMinOut(expectedOut, slippageBps),
			}
		}
	}

	return best, nil
}
