// Package entity implements the cache-and-query engine between
// application code and a pluggable storage backend. A Manager decides,
// per call, whether to serve from an in-memory snapshot, bypass it, fetch
// per-record detail, deduplicate concurrent fetches, and route calls to
// alternate storages based on navigational context.
package entity

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-entity-manager/cache"
	"github.com/goliatone/go-entity-manager/hook"
	"github.com/goliatone/go-entity-manager/logging"
	"github.com/goliatone/go-entity-manager/query"
	"github.com/goliatone/go-entity-manager/signal"
	"github.com/goliatone/go-entity-manager/storage"
)

// flightKeySeparator joins the routing path and record id into a
// singleflight key so distinct parent scopes never collapse into one
// fetch.
const flightKeySeparator = "::"

// detailKey scopes a detail-cache entry the same way the singleflight
// key is scoped: a record fetched through a routed path never collides
// with the same id in the default scope.
func detailKey(path, id string) string {
	return path + flightKeySeparator + id
}

// Result is the manager's answer to List and Query calls.
type Result struct {
	Items     []storage.Record
	Total     int
	FromCache bool
}

// Manager orchestrates the list cache, detail cache, query executor, and
// storage routing for one entity collection. Caches are private to the
// instance; nothing is shared across managers.
type Manager struct {
	name       string
	idField    string
	storage    storage.Adapter
	router     Router
	hooks      hook.Invoker
	signals    signal.Bus
	log        logging.Logger
	threshold  int // 0 disables list caching
	asymmetric bool
	detailTTL  time.Duration
	readOnly   bool

	searchFields []string

	list   *cache.List
	detail cache.Detail
	flight singleflight.Group
	stats  managerStats
	now    func() time.Time
}

// New builds a Manager from opts. Caches start empty and are populated
// lazily by the first qualifying read.
func New(opts Options) (*Manager, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logging.Nop{}
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = hook.Nop{}
	}
	signals := opts.Signals
	if signals == nil {
		signals = signal.Nop{}
	}
	idField := opts.IDField
	if idField == "" {
		idField = storage.DefaultIDField
	}
	router := opts.Router
	if router == nil {
		router = NewStaticRouter(opts.Storage, opts.Parents, log)
	}

	m := &Manager{
		name:       opts.Name,
		idField:    idField,
		storage:    opts.Storage,
		router:     router,
		hooks:      hooks,
		signals:    signals,
		log:        log,
		threshold:  opts.threshold(),
		asymmetric: opts.Asymmetric,
		detailTTL:  opts.DetailCacheTTL,
		readOnly:   opts.ReadOnly,
		list:       cache.NewList(),
		now:        time.Now,
	}

	caps := opts.Storage.Capabilities()
	m.searchFields = query.ParseSearchFields(caps.SearchFields, log)

	if opts.Asymmetric && opts.DetailCacheTTL != 0 {
		if opts.DetailCache != nil {
			m.detail = opts.DetailCache
		} else {
			m.detail = cache.NewMapDetail(opts.DetailCacheTTL)
		}
	}

	return m, nil
}

// Name returns the entity collection name.
func (m *Manager) Name() string { return m.name }

// IDField returns the record field acting as identity.
func (m *Manager) IDField() string { return m.idField }

// Stats returns a snapshot of the manager's running counters.
func (m *Manager) Stats() Stats { return m.stats.snapshot() }

// List returns records for the given params. When the collection is small
// enough to cache and the query is cache-eligible, results come from the
// local snapshot and the query executor; otherwise the resolved storage
// answers. Filtered queries bypass the cache unless CacheSafe is set, so
// filtered results always reflect the live backend by default.
func (m *Manager) List(ctx context.Context, params storage.ListParams, parents ...ParentRef) (Result, error) {
	m.stats.listCalls.Add(1)

	res, err := m.resolve(ctx, "list", parents)
	if err != nil {
		return Result{}, err
	}

	cacheable := m.cacheableResolution(res)
	filtered := params.HasFilters()
	cacheEligible := !filtered || params.CacheSafe

	if cacheable && cacheEligible && m.list.Valid() {
		m.stats.cacheHits.Add(1)
		items, total := query.Execute(m.list.Items(), params, m.searchFields)
		return Result{Items: items, Total: total, FromCache: true}, nil
	}
	if cacheable && cacheEligible {
		m.stats.cacheMisses.Add(1)
	}

	out, err := m.fetchList(ctx, res, params)
	if err != nil {
		return Result{}, err
	}

	if cacheable && !filtered && out.Total <= m.threshold {
		m.list.Populate(out.Items, out.Total, m.now())
		m.log.Debug("list cache populated", logging.Fields{
			"entity": m.name,
			"items":  len(out.Items),
			"total":  out.Total,
		})
	}

	return Result{Items: out.Items, Total: out.Total}, nil
}

// Query always executes filters locally. When the cache is cold it first
// loads the collection (one page sized at the threshold); if the total
// exceeds the threshold the cache cannot be populated and the executor
// runs over whatever partial or empty data exists, a documented
// degraded-accuracy path.
func (m *Manager) Query(ctx context.Context, params storage.ListParams, parents ...ParentRef) (Result, error) {
	m.stats.listCalls.Add(1)

	res, err := m.resolve(ctx, "query", parents)
	if err != nil {
		return Result{}, err
	}

	if !m.cacheableResolution(res) {
		m.log.Warn("local query without an eligible list cache runs over an empty snapshot", logging.Fields{
			"entity":    m.name,
			"threshold": m.threshold,
		})
	} else if !m.list.Valid() {
		out, err := m.fetchList(ctx, res, storage.ListParams{Page: 1, PageSize: m.threshold})
		if err != nil {
			return Result{}, err
		}
		if out.Total <= m.threshold {
			m.list.Populate(out.Items, out.Total, m.now())
		} else {
			m.log.Warn("collection exceeds local filter threshold, query runs over partial data", logging.Fields{
				"entity":    m.name,
				"total":     out.Total,
				"threshold": m.threshold,
			})
		}
	}

	items, total := query.Execute(m.list.Items(), params, m.searchFields)
	return Result{Items: items, Total: total, FromCache: true}, nil
}

// Get returns one record by id. In symmetric mode a valid list cache is
// probed first, then storage (single-record reads never write the
// cache). In asymmetric mode the detail cache is probed and concurrent
// fetches for the same id collapse into one backend call whose outcome
// every waiter shares.
func (m *Manager) Get(ctx context.Context, id string, parents ...ParentRef) (storage.Record, error) {
	m.stats.getCalls.Add(1)

	res, err := m.resolve(ctx, "get", parents)
	if err != nil {
		return nil, err
	}

	if !m.asymmetric {
		if m.cacheableResolution(res) && m.list.Valid() {
			if rec, ok := m.list.FindByID(m.idField, id); ok {
				m.stats.cacheHits.Add(1)
				return rec, nil
			}
		}
		m.stats.cacheMisses.Add(1)
		return res.Storage.Get(ctx, id, res.CallOptions())
	}

	if m.detail != nil {
		if rec, ok := m.detail.Get(detailKey(res.Path, id)); ok {
			m.stats.detailCacheHits.Add(1)
			return rec, nil
		}
	}

	return m.fetchDetail(ctx, res, id)
}

// fetchDetail issues the storage fetch for one id, registering it so
// concurrent callers await the same outcome instead of issuing their
// own. The fetch outlives caller cancellation: an abandoned caller
// leaves it running to completion and the result is cached per normal
// rules.
func (m *Manager) fetchDetail(ctx context.Context, res Resolution, id string) (storage.Record, error) {
	key := detailKey(res.Path, id)
	fetchCtx := context.WithoutCancel(ctx)

	v, err, _ := m.flight.Do(key, func() (any, error) {
		m.stats.detailCacheMisses.Add(1)
		rec, err := res.Storage.Get(fetchCtx, id, res.CallOptions())
		if err != nil {
			return nil, err
		}
		if m.detail != nil {
			m.detail.Set(key, rec)
		}
		return rec, nil
	})
	m.flight.Forget(key)
	if err != nil {
		return nil, err
	}
	return v.(storage.Record).Clone(), nil
}

// GetMany returns records for the given ids in input order. Each id goes
// through the same cache-then-fetch path as Get, so cached records never
// touch storage and concurrent overlap across a batch is still
// deduplicated. Missing ids fail the whole call.
func (m *Manager) GetMany(ctx context.Context, ids []string, parents ...ParentRef) ([]storage.Record, error) {
	out := make([]storage.Record, len(ids))
	for i, id := range ids {
		rec, err := m.Get(ctx, id, parents...)
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

// Create persists a new record. The presave hook may edit the payload or
// abort the operation before any storage call. On success the caches are
// invalidated and lifecycle signals fire regardless of prior cache
// validity.
func (m *Manager) Create(ctx context.Context, data storage.Record, parents ...ParentRef) (storage.Record, error) {
	if m.readOnly {
		return nil, ErrReadOnly
	}
	m.stats.createCalls.Add(1)

	res, err := m.resolve(ctx, "create", parents)
	if err != nil {
		return nil, err
	}

	ev := &hook.Event{Entity: m.name, Action: "create", Data: data}
	if err := m.hooks.Invoke(ctx, hook.PreSave, ev); err != nil {
		return nil, fmt.Errorf("entity: presave hook: %w", err)
	}

	rec, err := res.Storage.Create(ctx, ev.Data, res.CallOptions())
	if err != nil {
		return nil, err
	}

	ev.Record = rec
	hookErr := m.hooks.Invoke(ctx, hook.PostSave, ev)
	m.afterMutation(signal.ActionCreated, rec, "")
	if hookErr != nil {
		return nil, fmt.Errorf("entity: postsave hook: %w", hookErr)
	}
	return rec, nil
}

// Update replaces a record.
func (m *Manager) Update(ctx context.Context, id string, data storage.Record, parents ...ParentRef) (storage.Record, error) {
	return m.save(ctx, "update", id, data, parents)
}

// Patch applies a partial update.
func (m *Manager) Patch(ctx context.Context, id string, data storage.Record, parents ...ParentRef) (storage.Record, error) {
	return m.save(ctx, "patch", id, data, parents)
}

func (m *Manager) save(ctx context.Context, action, id string, data storage.Record, parents ParentContext) (storage.Record, error) {
	if m.readOnly {
		return nil, ErrReadOnly
	}
	if action == "patch" {
		m.stats.patchCalls.Add(1)
	} else {
		m.stats.updateCalls.Add(1)
	}

	res, err := m.resolve(ctx, action, parents)
	if err != nil {
		return nil, err
	}

	ev := &hook.Event{Entity: m.name, Action: action, ID: id, Data: data}
	if err := m.hooks.Invoke(ctx, hook.PreSave, ev); err != nil {
		return nil, fmt.Errorf("entity: presave hook: %w", err)
	}

	var rec storage.Record
	if action == "patch" {
		rec, err = res.Storage.Patch(ctx, id, ev.Data, res.CallOptions())
	} else {
		rec, err = res.Storage.Update(ctx, id, ev.Data, res.CallOptions())
	}
	if err != nil {
		return nil, err
	}

	ev.Record = rec
	hookErr := m.hooks.Invoke(ctx, hook.PostSave, ev)
	m.afterMutation(signal.ActionUpdated, rec, detailKey(res.Path, id))
	if hookErr != nil {
		return nil, fmt.Errorf("entity: postsave hook: %w", hookErr)
	}
	return rec, nil
}

// Delete removes a record. The predelete hook may abort before the
// storage call.
func (m *Manager) Delete(ctx context.Context, id string, parents ...ParentRef) error {
	if m.readOnly {
		return ErrReadOnly
	}
	m.stats.deleteCalls.Add(1)

	res, err := m.resolve(ctx, "delete", parents)
	if err != nil {
		return err
	}

	ev := &hook.Event{Entity: m.name, Action: "delete", ID: id}
	if err := m.hooks.Invoke(ctx, hook.PreDelete, ev); err != nil {
		return fmt.Errorf("entity: predelete hook: %w", err)
	}

	if err := res.Storage.Delete(ctx, id, res.CallOptions()); err != nil {
		return err
	}

	hookErr := m.hooks.Invoke(ctx, hook.PostDelete, ev)
	m.afterMutation(signal.ActionDeleted, id, detailKey(res.Path, id))
	if hookErr != nil {
		return fmt.Errorf("entity: postdelete hook: %w", hookErr)
	}
	return nil
}

// afterMutation invalidates caches and emits signals. It runs on every
// successful storage mutation, whether or not the cache was ever valid;
// cache state is binary so an eager invalidation is always safe. key is
// the scoped detail-cache key of the mutated record, empty on create.
func (m *Manager) afterMutation(action string, payload any, key string) {
	m.list.Invalidate()
	if key != "" && m.detail != nil {
		m.detail.Delete(key)
	}
	m.signals.EmitEntity(m.name, action, payload)
	m.signals.Emit(signal.DataInvalidated, m.name)
}

// InvalidateCache clears both the list snapshot and the detail cache.
func (m *Manager) InvalidateCache() {
	m.list.Invalidate()
	if m.detail != nil {
		m.detail.Clear()
	}
}

// InvalidateDetailCache clears only the per-record detail cache; a valid
// list snapshot stays valid.
func (m *Manager) InvalidateDetailCache() {
	if m.detail != nil {
		m.detail.Clear()
	}
}

// CacheInfo reports the cache state for debugging and admin tooling.
func (m *Manager) CacheInfo() cache.Info {
	caps := m.storage.Capabilities()
	info := cache.Info{
		Enabled:       m.threshold > 0 && caps.SupportsTotal && caps.SupportsCaching,
		SupportsTotal: caps.SupportsTotal,
		Threshold:     m.threshold,
		Valid:         m.list.Valid(),
		Overflow:      m.list.Overflow(),
		ItemCount:     m.list.Len(),
		Total:         m.list.Total(),
		LoadedAt:      m.list.LoadedAt(),
		Asymmetric:    m.asymmetric,
	}
	if m.asymmetric {
		info.DetailEnabled = m.detail != nil
		info.DetailTTL = m.detailTTL
		if m.detail != nil {
			info.DetailSize = m.detail.Len()
		}
	}
	return info
}

// resolve runs storage routing for one operation. Explicit parents win;
// otherwise a chain attached to the context with WithParents applies.
func (m *Manager) resolve(ctx context.Context, method string, parents ParentContext) (Resolution, error) {
	pc := parents
	if len(pc) == 0 {
		pc = ParentsFromContext(ctx)
	}
	res, err := m.router.Resolve(method, pc)
	if err != nil {
		return Resolution{}, err
	}
	if res.Storage == nil {
		res.Storage = m.storage
	}
	return res, nil
}

// cacheableResolution reports whether the resolved call may touch the
// manager's list cache. Alternate storages and path overrides describe a
// different collection scope, so they never share the snapshot.
func (m *Manager) cacheableResolution(res Resolution) bool {
	if m.threshold <= 0 {
		return false
	}
	if res.Storage != m.storage || res.Path != "" {
		return false
	}
	caps := res.Storage.Capabilities()
	return caps.SupportsTotal && caps.SupportsCaching
}

// fetchList applies routing params and calls the resolved storage.
func (m *Manager) fetchList(ctx context.Context, res Resolution, params storage.ListParams) (storage.ListResult, error) {
	opts := res.CallOptions()
	params.Filters = opts.RenameFilters(params.Filters)
	out, err := res.Storage.List(ctx, params, opts)
	if err != nil {
		return storage.ListResult{}, err
	}
	m.stats.observeList(len(out.Items), out.Total)
	return out, nil
}
