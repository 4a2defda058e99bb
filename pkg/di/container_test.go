package di_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-entity-manager/cache"
	"github.com/goliatone/go-entity-manager/entity"
	"github.com/goliatone/go-entity-manager/hook"
	"github.com/goliatone/go-entity-manager/pkg/di"
	"github.com/goliatone/go-entity-manager/signal"
	"github.com/goliatone/go-entity-manager/storage"
	"github.com/goliatone/go-entity-manager/storage/memory"
)

func TestNewContainerWithDefaults(t *testing.T) {
	c, err := di.NewContainerWithDefaults()
	require.NoError(t, err)

	assert.NotNil(t, c.Hooks())
	assert.NotNil(t, c.Signals())
	assert.NotNil(t, c.Logger())
	assert.Equal(t, cache.DefaultConfig(), c.Config().DetailCache)
}

func TestNewContainerRejectsInvalidDetailConfig(t *testing.T) {
	_, err := di.NewContainer(di.Config{
		DetailCache: cache.Config{Capacity: -1, NumShards: 4, EvictionPercentage: 10},
	})
	assert.Error(t, err)
}

func TestNewManagerInheritsContainerWiring(t *testing.T) {
	c, err := di.NewContainerWithDefaults()
	require.NoError(t, err)

	var hookCalls int
	c.Hooks().Register(hook.PreSave, func(context.Context, *hook.Event) error {
		hookCalls++
		return nil
	})

	var signals int
	if d, ok := c.Signals().(*signal.Dispatcher); ok {
		d.Subscribe(signal.DataInvalidated, func(any) { signals++ })
	}

	m, err := di.NewManager(c, entity.Options{
		Name:    "books",
		Storage: memory.New(nil),
	})
	require.NoError(t, err)

	_, err = m.Create(context.Background(), storage.Record{"title": "x"})
	require.NoError(t, err)

	assert.Equal(t, 1, hookCalls, "managers use the container's hook registry")
	assert.Equal(t, 1, signals, "managers use the container's signal bus")
}

func TestNewManagerWiresSturdycDetailCache(t *testing.T) {
	c, err := di.NewContainerWithDefaults()
	require.NoError(t, err)

	store := memory.New([]storage.Record{{"id": "1", "title": "x"}})
	m, err := di.NewManager(c, entity.Options{
		Name:           "books",
		Storage:        store,
		Asymmetric:     true,
		DetailCacheTTL: entity.TTLNever,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.Get(ctx, "1")
	require.NoError(t, err)
	_, err = m.Get(ctx, "1")
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.DetailCacheMisses)
	assert.Equal(t, int64(1), stats.DetailCacheHits)
	assert.Equal(t, 1, m.CacheInfo().DetailSize)
}

func TestNewManagerKeepsExplicitCollaborators(t *testing.T) {
	c, err := di.NewContainerWithDefaults()
	require.NoError(t, err)

	own := signal.NewDispatcher()
	var calls int
	own.Subscribe(signal.DataInvalidated, func(any) { calls++ })

	m, err := di.NewManager(c, entity.Options{
		Name:    "books",
		Storage: memory.New(nil),
		Signals: own,
	})
	require.NoError(t, err)

	_, err = m.Create(context.Background(), storage.Record{"title": "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "explicit options win over container wiring")
}
