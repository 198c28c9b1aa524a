package poolcache

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

func testPubkey(t *testing.T, seed byte) solana.PublicKey {
	t.Helper()
	var b [32]byte
	b[0] = seed
	return solana.PublicKeyFromBytes(b[:])
}

func TestUpsert_HigherSlotWins(t *testing.T) {
	c := New()
	poolID := "pool-1"

	low := NewOrca(testPubkey(t, 1), testPubkey(t, 2), uint128.From64(1000), uint128.From64(2000), 30, nil)
	high := NewOrca(testPubkey(t, 1), testPubkey(t, 2), uint128.From64(9999), uint128.From64(8888), 30, nil)

	c.Upsert(poolID, low, 100)
	c.Upsert(poolID, high, 50) // lower slot: ignored

	got, ok := c.Get(poolID)
	if !ok {
		t.Fatalf("expected pool to be present")
	}
	if got.ReserveA.Cmp(uint128.From64(1000)) != 0 {
		t.Fatalf("expected slot-100 value preserved, got reserveA=%s", got.ReserveA.String())
	}

	c.Upsert(poolID, high, 200) // higher slot: applied
	got, _ = c.Get(poolID)
	if got.ReserveA.Cmp(uint128.From64(9999)) != 0 {
		t.Fatalf("expected slot-200 value applied, got reserveA=%s", got.ReserveA.String())
	}
}

func TestGet_CacheMissReturnsFalse(t *testing.T) {
	c := New()
	if _, ok := c.Get("unknown"); ok {
		t.Fatalf("expected cache miss for unknown pool id")
	}
}

func TestGetPumpAmmReservesByBaseMint(t *testing.T) {
	c := New()
	baseMint := testPubkey(t, 10)
	quoteMint := testPubkey(t, 11)

	state := NewPumpAmm(baseMint, quoteMint, testPubkey(t, 12), testPubkey(t, 13)).WithReserves(1_000_000, 500_000)
	c.Upsert("pump-pool-1", state, 1)

	base, quote, ok := c.GetPumpAmmReservesByBaseMint(baseMint)
	if !ok {
		t.Fatalf("expected reserves by base mint to be found")
	}
	if base != 1_000_000 || quote != 500_000 {
		t.Fatalf("unexpected reserves: base=%d quote=%d", base, quote)
	}
}

func TestGetPumpAmmPoolAccountsByBaseMint_RequiresMinAccounts(t *testing.T) {
	c := New()
	baseMint := testPubkey(t, 20)

	accounts := make([]solana.PublicKey, 10) // below MinUsablePoolAccounts
	state := NewPumpAmm(baseMint, testPubkey(t, 21), testPubkey(t, 22), testPubkey(t, 23)).WithPoolAccounts(accounts)
	c.Upsert("pump-pool-2", state, 1)

	if _, ok := c.GetPumpAmmPoolAccountsByBaseMint(baseMint); ok {
		t.Fatalf("expected pool accounts lookup to fail with < %d accounts", MinUsablePoolAccounts)
	}

	full := make([]solana.PublicKey, 14)
	state2 := state.WithPoolAccounts(full)
	c.Upsert("pump-pool-2", state2, 2)

	got, ok := c.GetPumpAmmPoolAccountsByBaseMint(baseMint)
	if !ok || len(got) != 14 {
		t.Fatalf("expected 14 pool accounts, got ok=%v len=%d", ok, len(got))
	}
}

func TestDelete_RemovesFromBaseMintIndex(t *testing.T) {
	c := New()
	baseMint := testPubkey(t, 30)
	state := NewPumpAmm(baseMint, testPubkey(t, 31), testPubkey(t, 32), testPubkey(t, 33)).WithReserves(1, 1)
	c.Upsert("pump-pool-3", state, 1)
	c.Delete("pump-pool-3")

	if _, ok := c.Get("pump-pool-3"); ok {
		t.Fatalf("expected pool to be deleted")
	}
	if _, _, ok := c.GetPumpAmmReservesByBaseMint(baseMint); ok {
		t.Fatalf("expected base mint index to be cleared on delete")
	}
}

func TestFindByMintPair_MatchesEitherOrder(t *testing.T) {
	c := New()
	mintA, mintB := testPubkey(t, 10), testPubkey(t, 11)
	c.Upsert("orca-pool-1", NewOrca(mintA, mintB, uint128.From64(1_000), uint128.From64(2_000), 30, nil), 1)

	if _, ok := c.FindByMintPair(mintA, mintB, KindOrca); !ok {
		t.Fatalf("expected a hit in (mintA, mintB) order")
	}
	if _, ok := c.FindByMintPair(mintB, mintA, KindOrca); !ok {
		t.Fatalf("expected a hit in (mintB, mintA) order")
	}
	if _, ok := c.FindByMintPair(mintA, mintB, KindRaydium); ok {
		t.Fatalf("expected no hit for the wrong kind")
	}
}

func TestFindByMintPair_NoMatchReturnsFalse(t *testing.T) {
	c := New()
	if _, ok := c.FindByMintPair(testPubkey(t, 1), testPubkey(t, 2), KindOrca); ok {
		t.Fatalf("expected no match on an empty cache")
	}
}

func TestLen(t *testing.T) {
	c := New()
	for i := 0; i < 5; i++ {
		c.Upsert(string(rune('a'+i)), NewOrca(testPubkey(t, byte(i)), testPubkey(t, byte(i+1)), uint128.Zero, uint128.Zero, 30, nil), uint64(i+1))
	}
	if c.Len() != 5 {
		t.Fatalf("expected len=5, got %d", c.Len())
	}
}
