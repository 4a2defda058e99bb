package entity

import "sync/atomic"

// Stats is a point-in-time snapshot of a manager's running counters.
type Stats struct {
	ListCalls         int64 `json:"list_calls"`
	GetCalls          int64 `json:"get_calls"`
	CreateCalls       int64 `json:"create_calls"`
	UpdateCalls       int64 `json:"update_calls"`
	PatchCalls        int64 `json:"patch_calls"`
	DeleteCalls       int64 `json:"delete_calls"`
	CacheHits         int64 `json:"cache_hits"`
	CacheMisses       int64 `json:"cache_misses"`
	DetailCacheHits   int64 `json:"detail_cache_hits"`
	DetailCacheMisses int64 `json:"detail_cache_misses"`
	MaxItemsSeen      int64 `json:"max_items_seen"`
	MaxTotal          int64 `json:"max_total"`
}

// managerStats holds the live counters. Counters are independent atomics;
// no cross-counter consistency is promised by a snapshot.
type managerStats struct {
	listCalls         atomic.Int64
	getCalls          atomic.Int64
	createCalls       atomic.Int64
	updateCalls       atomic.Int64
	patchCalls        atomic.Int64
	deleteCalls       atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	detailCacheHits   atomic.Int64
	detailCacheMisses atomic.Int64
	maxItemsSeen      atomic.Int64
	maxTotal          atomic.Int64
}

func (s *managerStats) observeList(items, total int) {
	storeMax(&s.maxItemsSeen, int64(items))
	storeMax(&s.maxTotal, int64(total))
}

func storeMax(a *atomic.Int64, v int64) {
	for {
		cur := a.Load()
		if v <= cur || a.CompareAndSwap(cur, v) {
			return
		}
	}
}

func (s *managerStats) snapshot() Stats {
	return Stats{
		ListCalls:         s.listCalls.Load(),
		GetCalls:          s.getCalls.Load(),
		CreateCalls:       s.createCalls.Load(),
		UpdateCalls:       s.updateCalls.Load(),
		PatchCalls:        s.patchCalls.Load(),
		DeleteCalls:       s.deleteCalls.Load(),
		CacheHits:         s.cacheHits.Load(),
		CacheMisses:       s.cacheMisses.Load(),
		DetailCacheHits:   s.detailCacheHits.Load(),
		DetailCacheMisses: s.detailCacheMisses.Load(),
		MaxItemsSeen:      s.maxItemsSeen.Load(),
		MaxTotal:          s.maxTotal.Load(),
	}
}
