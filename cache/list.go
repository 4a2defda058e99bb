// Package cache holds the manager-private caches: a full-collection list
// snapshot with a binary valid/invalid state, and a per-record detail
// cache with TTL semantics used in asymmetric mode.
package cache

import (
	"sync"
	"time"

	"github.com/goliatone/go-entity-manager/storage"
)

// List is a snapshot cache for one collection. It is valid only when a
// single response returned every record of the collection; it is never
// partially backfilled across calls. State is binary: a mutation or
// explicit invalidation drops the snapshot entirely and the next
// qualifying read rebuilds it.
type List struct {
	mu       sync.RWMutex
	valid    bool
	overflow bool
	items    []storage.Record
	total    int
	loadedAt time.Time
}

// NewList returns an empty, invalid list cache.
func NewList() *List {
	return &List{}
}

// Populate stores a snapshot. When items cover the declared total the
// cache becomes valid; a shorter load is kept but flagged as overflow so
// callers can detect the degraded state instead of filtering against it.
func (l *List) Populate(items []storage.Record, total int, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = storage.CloneRecords(items)
	l.total = total
	l.loadedAt = now
	l.overflow = len(items) < total
	l.valid = !l.overflow
}

// Invalidate drops the snapshot and resets the cache to empty.
func (l *List) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.valid = false
	l.overflow = false
	l.items = nil
	l.total = 0
	l.loadedAt = time.Time{}
}

// Valid reports whether the snapshot covers the whole collection.
func (l *List) Valid() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.valid
}

// Overflow reports whether fewer items are cached than the declared
// total.
func (l *List) Overflow() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.overflow
}

// Len returns the number of cached items.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Total returns the collection total recorded at load time.
func (l *List) Total() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// LoadedAt returns the snapshot timestamp, zero when never loaded.
func (l *List) LoadedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedAt
}

// Items returns a cloned copy of the cached records.
func (l *List) Items() []storage.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return storage.CloneRecords(l.items)
}

// FindByID probes the snapshot for a record by identity field. The
// returned record is a clone.
func (l *List) FindByID(idField, id string) (storage.Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, rec := range l.items {
		if rec.ID(idField) == id {
			return rec.Clone(), true
		}
	}
	return nil, false
}
