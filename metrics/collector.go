// Package metrics exposes entity manager stats as prometheus metrics.
// Register a ManagerCollector on any registry; counters are read from the
// managers' atomic stats at scrape time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-entity-manager/entity"
)

// StatsSource is the slice of the manager the collector reads.
type StatsSource interface {
	Name() string
	Stats() entity.Stats
}

var _ prometheus.Collector = (*ManagerCollector)(nil)

// ManagerCollector exports per-manager stats, labeled by entity name.
type ManagerCollector struct {
	sources []StatsSource

	listCalls         *prometheus.Desc
	getCalls          *prometheus.Desc
	createCalls       *prometheus.Desc
	updateCalls       *prometheus.Desc
	patchCalls        *prometheus.Desc
	deleteCalls       *prometheus.Desc
	cacheHits         *prometheus.Desc
	cacheMisses       *prometheus.Desc
	detailCacheHits   *prometheus.Desc
	detailCacheMisses *prometheus.Desc
	maxItemsSeen      *prometheus.Desc
	maxTotal          *prometheus.Desc
}

// NewManagerCollector builds a collector over the given managers.
func NewManagerCollector(sources ...StatsSource) *ManagerCollector {
	labels := []string{"entity"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("entity_manager_"+name, help, labels, nil)
	}
	return &ManagerCollector{
		sources:           sources,
		listCalls:         desc("list_calls_total", "List and query operations."),
		getCalls:          desc("get_calls_total", "Get operations."),
		createCalls:       desc("create_calls_total", "Create operations."),
		updateCalls:       desc("update_calls_total", "Update operations."),
		patchCalls:        desc("patch_calls_total", "Patch operations."),
		deleteCalls:       desc("delete_calls_total", "Delete operations."),
		cacheHits:         desc("cache_hits_total", "List cache hits."),
		cacheMisses:       desc("cache_misses_total", "List cache misses."),
		detailCacheHits:   desc("detail_cache_hits_total", "Detail cache hits."),
		detailCacheMisses: desc("detail_cache_misses_total", "Detail cache misses."),
		maxItemsSeen:      desc("max_items_seen", "Largest item page observed from storage."),
		maxTotal:          desc("max_total", "Largest collection total observed from storage."),
	}
}

// Describe implements prometheus.Collector.
func (c *ManagerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.listCalls
	ch <- c.getCalls
	ch <- c.createCalls
	ch <- c.updateCalls
	ch <- c.patchCalls
	ch <- c.deleteCalls
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.detailCacheHits
	ch <- c.detailCacheMisses
	ch <- c.maxItemsSeen
	ch <- c.maxTotal
}

// Collect implements prometheus.Collector.
func (c *ManagerCollector) Collect(ch chan<- prometheus.Metric) {
	counter := func(d *prometheus.Desc, v int64, name string) prometheus.Metric {
		return prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), name)
	}
	gauge := func(d *prometheus.Desc, v int64, name string) prometheus.Metric {
		return prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), name)
	}
	for _, src := range c.sources {
		name := src.Name()
		s := src.Stats()
		ch <- counter(c.listCalls, s.ListCalls, name)
		ch <- counter(c.getCalls, s.GetCalls, name)
		ch <- counter(c.createCalls, s.CreateCalls, name)
		ch <- counter(c.updateCalls, s.UpdateCalls, name)
		ch <- counter(c.patchCalls, s.PatchCalls, name)
		ch <- counter(c.deleteCalls, s.DeleteCalls, name)
		ch <- counter(c.cacheHits, s.CacheHits, name)
		ch <- counter(c.cacheMisses, s.CacheMisses, name)
		ch <- counter(c.detailCacheHits, s.DetailCacheHits, name)
		ch <- counter(c.detailCacheMisses, s.DetailCacheMisses, name)
		ch <- gauge(c.maxItemsSeen, s.MaxItemsSeen, name)
		ch <- gauge(c.maxTotal, s.MaxTotal, name)
	}
}
