// Package poolcache is the process-wide concurrent Live Pool Cache: a
// versioned key/value store of DEX pool states consumed by the quoting
// path. External MarketEvents are the only legal way producers mutate it.
package poolcache

import (
	"hash/fnv"
	"sync"

	"github.com/gagliardetto/solana-go"
)

const numShards = 16

// Cache is a sharded, slot-versioned map of pool_id -> PoolState, with a
// secondary base_mint -> pool_id index for the PumpAmm variant. Many
// concurrent readers, writers serialize per pool_id via per-shard
// exclusive sections.
type Cache struct {
	shards [numShards]*shard
}

type shard struct {
	mu    sync.RWMutex
	items map[string]entry
	// baseMintIndex maps a PumpAmm base_mint to its pool_id, scoped to
	// this shard so index updates share the same per-shard lock as the
	// primary map (no tearing across the two).
	baseMintIndex map[string]string
}

type entry struct {
	state PoolState
	slot  uint64
}

// New creates an empty Live Pool Cache.
func New() *Cache {
	c := &Cache{}
	for i := 0; i < numShards; i++ {
		c.shards[i] = &shard{
			items:         make(map[string]entry),
			baseMintIndex: make(map[string]string),
		}
	}
	return c
}

func (c *Cache) getShard(poolID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(poolID))
	return c.shards[h.Sum32()%numShards]
}

// Upsert installs state for poolID iff slot > the currently stored slot;
// otherwise it is a no-op. Updates the secondary base_mint index
// atomically with the primary entry.
func (c *Cache) Upsert(poolID string, state PoolState, slot uint64) {
	s := c.getShard(poolID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[poolID]; ok && slot <= existing.slot {
		return
	}

	s.items[poolID] = entry{state: state, slot: slot}
	if (state.Kind == KindPumpAmm || state.Kind == KindPumpBondingCurve) && !state.BaseMint.IsZero() {
		s.baseMintIndex[state.BaseMint.String()] = poolID
	}
}

// Get returns a non-blocking snapshot read of poolID's PoolState.
func (c *Cache) Get(poolID string) (PoolState, bool) {
	s := c.getShard(poolID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[poolID]
	if !ok {
		return PoolState{}, false
	}
	return e.state, true
}

// Delete explicitly evicts poolID from the cache.
func (c *Cache) Delete(poolID string) {
	s := c.getShard(poolID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[poolID]; ok {
		if (e.state.Kind == KindPumpAmm || e.state.Kind == KindPumpBondingCurve) && !e.state.BaseMint.IsZero() {
			delete(s.baseMintIndex, e.state.BaseMint.String())
		}
		delete(s.items, poolID)
	}
}

// GetPumpAmmReservesByBaseMint returns the (base_reserve, quote_reserve)
// pair for the PumpAmm pool indexed under baseMint, if present and
// populated.
func (c *Cache) GetPumpAmmReservesByBaseMint(baseMint solana.PublicKey) (base, quote uint64, ok bool) {
	poolID, state, found := c.lookupByBaseMint(baseMint)
	if !found {
		return 0, 0, false
	}
	_ = poolID
	if state.BaseReserve == nil || state.QuoteReserve == nil {
		return 0, 0, false
	}
	return *state.BaseReserve, *state.QuoteReserve, true
}

// GetPumpAmmStateByBaseMint returns the full PoolState for the PumpAmm pool
// indexed under baseMint. Used by the quoting path, which needs mints and
// reserves together rather than either alone.
func (c *Cache) GetPumpAmmStateByBaseMint(baseMint solana.PublicKey) (PoolState, bool) {
	_, state, found := c.lookupByBaseMint(baseMint)
	if !found || state.Kind != KindPumpAmm {
		return PoolState{}, false
	}
	return state, true
}

// GetPumpBondingCurveByTokenMint returns the (sol_reserves, token_reserves)
// pair for the pre-graduation bonding-curve pool indexed under tokenMint,
// if present and populated.
func (c *Cache) GetPumpBondingCurveByTokenMint(tokenMint solana.PublicKey) (sol, token uint64, ok bool) {
	poolID, state, found := c.lookupByBaseMint(tokenMint)
	if !found || state.Kind != KindPumpBondingCurve {
		return 0, 0, false
	}
	_ = poolID
	if state.SolReserves == nil || state.TokenReserves == nil {
		return 0, 0, false
	}
	return *state.SolReserves, *state.TokenReserves, true
}

// GetPumpAmmPoolAccountsByBaseMint returns the pool_accounts sequence for
// the PumpAmm pool indexed under baseMint, only when the stored
// pool_accounts length is >= MinUsablePoolAccounts.
func (c *Cache) GetPumpAmmPoolAccountsByBaseMint(baseMint solana.PublicKey) ([]solana.PublicKey, bool) {
	_, state, found := c.lookupByBaseMint(baseMint)
	if !found {
		return nil, false
	}
	if len(state.PoolAccounts) < MinUsablePoolAccounts {
		return nil, false
	}
	return state.PoolAccounts, true
}

func (c *Cache) lookupByBaseMint(baseMint solana.PublicKey) (poolID string, state PoolState, ok bool) {
	key := baseMint.String()
	for _, s := range c.shards {
		s.mu.RLock()
		pid, found := s.baseMintIndex[key]
		if !found {
			s.mu.RUnlock()
			continue
		}
		e := s.items[pid]
		s.mu.RUnlock()
		return pid, e.state, true
	}
	return "", PoolState{}, false
}

// FindByMintPair scans all shards for a pool of the given kind whose
// (MintA, MintB) match {mintA, mintB} in either order. Orca and Raydium
// have no secondary mint index (unlike PumpAmm's base_mint index): a
// constant-product pool is symmetric in its two mints, so there is no
// single canonical index key the way there is a base_mint for PumpAmm.
func (c *Cache) FindByMintPair(mintA, mintB solana.PublicKey, kind Kind) (PoolState, bool) {
	for _, s := range c.shards {
		s.mu.RLock()
		for _, e := range s.items {
			if e.state.Kind != kind {
				continue
			}
			matches := (e.state.MintA.Equals(mintA) && e.state.MintB.Equals(mintB)) ||
				(e.state.MintA.Equals(mintB) && e.state.MintB.Equals(mintA))
			if matches {
				state := e.state
				s.mu.RUnlock()
				return state, true
			}
		}
		s.mu.RUnlock()
	}
	return PoolState{}, false
}

// Len returns the total number of cached pools across all shards.
func (c *Cache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.items)
		s.mu.RUnlock()
	}
	return total
}

// Stats provides cache statistics for the admin metrics surface.
type Stats struct {
	TotalItems  int            `json:"total_items"`
	ShardCounts [numShards]int `json:"shard_counts"`
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	var stats Stats
	for i, s := range c.shards {
		s.mu.RLock()
		stats.ShardCounts[i] = len(s.items)
		stats.TotalItems += len(s.items)
		s.mu.RUnlock()
	}
	return stats
}
