// Package cacheinfra adapts the sturdyc cache client into the detail
// cache contract used by asymmetric entity managers. It is the production
// alternative to the map-backed default: sharded storage, capacity
// bounds, and background eviction.
package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-entity-manager/storage"
)

// neverTTL stands in for "entries never expire"; sturdyc requires a
// positive TTL so we use one far beyond any process lifetime.
const neverTTL = 100 * 365 * 24 * time.Hour

// Config holds the sturdyc settings for a detail cache instance.
type Config struct {
	// Capacity is the maximum number of records the cache can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines how many shards back the cache. Higher values
	// improve concurrency at the cost of memory. Must be greater than 0.
	NumShards int

	// TTL is the record time-to-live. Zero or negative means entries
	// never expire.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache
	// hits capacity. Must be between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are collected.
	// Zero uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns settings suitable for a single manager instance.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "cacheinfra: config error in field " + e.Field + ": " + e.Message
}

// SturdycDetail implements the detail cache contract over a typed sturdyc
// client.
type SturdycDetail struct {
	client *sturdyc.Client[storage.Record]
}

// NewSturdycDetail validates cfg and builds the sturdyc-backed detail
// cache. A non-positive TTL maps to effectively-never expiry.
func NewSturdycDetail(cfg Config) (*SturdycDetail, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = neverTTL
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[storage.Record](
		cfg.Capacity,
		cfg.NumShards,
		ttl,
		cfg.EvictionPercentage,
		options...,
	)

	return &SturdycDetail{client: client}, nil
}

// Get returns a clone of the cached record, if resident.
func (s *SturdycDetail) Get(id string) (storage.Record, bool) {
	rec, ok := s.client.Get(id)
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Set stores a clone of the record under its id.
func (s *SturdycDetail) Set(id string, rec storage.Record) {
	if rec == nil {
		return
	}
	s.client.Set(id, rec.Clone())
}

// Delete removes a single record.
func (s *SturdycDetail) Delete(id string) {
	s.client.Delete(id)
}

// Clear removes every resident record.
func (s *SturdycDetail) Clear() {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
}

// Len counts resident records.
func (s *SturdycDetail) Len() int {
	return s.client.Size()
}
