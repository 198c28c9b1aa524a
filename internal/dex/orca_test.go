package dex

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"solana-trading-core/internal/poolcache"
	"solana-trading-core/internal/solanaids"
)

func TestOrcaDex_QuoteExactIn(t *testing.T) {
	mintA, mintB := testPubkey(1), testPubkey(2)
	state := poolcache.NewOrca(mintA, mintB, uint128.From64(1_000_000_000), uint128.From64(500_000_000), 30, nil)

	lookup := func(a, b solana.PublicKey) (poolcache.PoolState, bool) {
		if (a.Equals(mintA) && b.Equals(mintB)) || (a.Equals(mintB) && b.Equals(mintA)) {
			return state, true
		}
		return poolcache.PoolState{}, false
	}

	d := NewOrcaDex(lookup)
	q, err := d.QuoteExactIn(context.Background(), mintA, mintB, 1_000_000)
	if err != nil || q == nil || q.AmountOut == 0 {
		t.Fatalf("expected quote, err=%v q=%v", err, q)
	}
}

func TestOrcaDex_QuoteExactIn_NoLookupFunc(t *testing.T) {
	d := NewOrcaDex(nil)
	q, err := d.QuoteExactIn(context.Background(), testPubkey(1), testPubkey(2), 1_000)
	if err != nil || q != nil {
		t.Fatalf("expected nil quote with no lookup, got q=%v err=%v", q, err)
	}
}

func TestRaydiumDex_Name(t *testing.T) {
	d := NewRaydiumDex(nil)
	if d.Name() != "raydium" {
		t.Fatalf("unexpected name: %s", d.Name())
	}
}

func TestBuildGenericSwapInstructions(t *testing.T) {
	user := testPubkey(1)
	mintA, mintB := testPubkey(2), testPubkey(3)
	poolAccounts := []solana.PublicKey{mintA, mintB, testPubkey(4), testPubkey(5), testPubkey(6), testPubkey(7)}

	ixs, err := buildGenericSwapInstructions(solanaids.OrcaWhirlpoolProgramID, mintA, mintB, 1_000, 900, user, poolAccounts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ixs[0].ProgramID().Equals(solanaids.OrcaWhirlpoolProgramID) {
		t.Fatalf("unexpected program id")
	}
}
