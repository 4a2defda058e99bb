package cacheinfra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-entity-manager/internal/cacheinfra"
	"github.com/goliatone/go-entity-manager/storage"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cacheinfra.Config)
		field  string
	}{
		{"zero capacity", func(c *cacheinfra.Config) { c.Capacity = 0 }, "Capacity"},
		{"zero shards", func(c *cacheinfra.Config) { c.NumShards = 0 }, "NumShards"},
		{"eviction too low", func(c *cacheinfra.Config) { c.EvictionPercentage = 0 }, "EvictionPercentage"},
		{"eviction too high", func(c *cacheinfra.Config) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := cacheinfra.DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			var cfgErr *cacheinfra.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}

	assert.NoError(t, cacheinfra.DefaultConfig().Validate())
}

func TestNewSturdycDetailRejectsInvalidConfig(t *testing.T) {
	_, err := cacheinfra.NewSturdycDetail(cacheinfra.Config{})
	assert.Error(t, err)
}

func TestSturdycDetailRoundTrip(t *testing.T) {
	d, err := cacheinfra.NewSturdycDetail(cacheinfra.DefaultConfig())
	require.NoError(t, err)

	d.Set("1", storage.Record{"id": "1", "title": "alpha"})

	rec, ok := d.Get("1")
	require.True(t, ok)
	assert.Equal(t, "alpha", rec["title"])
	assert.Equal(t, 1, d.Len())

	_, ok = d.Get("missing")
	assert.False(t, ok)
}

func TestSturdycDetailReadsAreClones(t *testing.T) {
	d, err := cacheinfra.NewSturdycDetail(cacheinfra.DefaultConfig())
	require.NoError(t, err)

	src := storage.Record{"id": "1", "title": "alpha"}
	d.Set("1", src)
	src["title"] = "mutated"

	rec, ok := d.Get("1")
	require.True(t, ok)
	assert.Equal(t, "alpha", rec["title"])

	rec["title"] = "mutated"
	again, ok := d.Get("1")
	require.True(t, ok)
	assert.Equal(t, "alpha", again["title"])
}

func TestSturdycDetailDeleteAndClear(t *testing.T) {
	d, err := cacheinfra.NewSturdycDetail(cacheinfra.DefaultConfig())
	require.NoError(t, err)

	d.Set("1", storage.Record{"id": "1"})
	d.Set("2", storage.Record{"id": "2"})

	d.Delete("1")
	_, ok := d.Get("1")
	assert.False(t, ok)
	assert.Equal(t, 1, d.Len())

	d.Clear()
	assert.Equal(t, 0, d.Len())
}
