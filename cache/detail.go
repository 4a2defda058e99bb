package cache

import (
	"sync"
	"time"

	"github.com/goliatone/go-entity-manager/storage"
)

// TTLNever marks a detail cache whose entries never expire.
const TTLNever = time.Duration(-1)

// Detail is a per-record cache keyed by id. Implementations must be safe
// for concurrent use. Reads return clones; implementations never hand out
// shared record state.
type Detail interface {
	Get(id string) (storage.Record, bool)
	Set(id string, rec storage.Record)
	Delete(id string)
	Clear()
	Len() int
}

type detailEntry struct {
	value    storage.Record
	cachedAt time.Time
}

// MapDetailOption tunes a map-backed detail cache.
type MapDetailOption func(*MapDetail)

// WithClock injects the time source used for TTL checks. Tests use this
// to advance simulated time.
func WithClock(now func() time.Time) MapDetailOption {
	return func(d *MapDetail) {
		if now != nil {
			d.now = now
		}
	}
}

// MapDetail is the default detail cache: a mutex-guarded map with lazy
// TTL expiry. Expired entries are treated as misses at read time and
// overwritten on the next successful fetch; there is no background sweep.
// A TTL of zero disables the cache entirely, a negative TTL never
// expires.
type MapDetail struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]detailEntry
}

// NewMapDetail builds a map-backed detail cache with the given TTL.
func NewMapDetail(ttl time.Duration, opts ...MapDetailOption) *MapDetail {
	d := &MapDetail{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]detailEntry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get returns a clone of the cached record when present and not expired.
func (d *MapDetail) Get(id string) (storage.Record, bool) {
	if d.ttl == 0 {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[id]
	if !ok {
		return nil, false
	}
	if d.ttl > 0 && d.now().Sub(entry.cachedAt) >= d.ttl {
		return nil, false
	}
	return entry.value.Clone(), true
}

// Set stores a clone of the record. A disabled cache ignores writes.
func (d *MapDetail) Set(id string, rec storage.Record) {
	if d.ttl == 0 || rec == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id] = detailEntry{value: rec.Clone(), cachedAt: d.now()}
}

// Delete drops one entry.
func (d *MapDetail) Delete(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, id)
}

// Clear drops every entry.
func (d *MapDetail) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make(map[string]detailEntry)
}

// Len counts resident entries, expired ones included until overwritten.
func (d *MapDetail) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
