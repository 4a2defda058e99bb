// Package memory provides an in-memory storage adapter. It backs tests
// and examples, and doubles as the reference implementation of the
// adapter contract: filters, search, sort, and pagination run through the
// same query executor the manager uses locally, so behavior matches
// cache-served results exactly.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-entity-manager/query"
	"github.com/goliatone/go-entity-manager/storage"
)

var _ storage.Adapter = (*Adapter)(nil)

// Option tunes an in-memory adapter.
type Option func(*Adapter)

// WithCapabilities overrides the default full capability set.
func WithCapabilities(caps storage.Capabilities) Option {
	return func(a *Adapter) { a.caps = caps }
}

// WithIDField changes the identity field. Default "id".
func WithIDField(field string) Option {
	return func(a *Adapter) { a.idField = field }
}

// WithSummaryFields makes list responses return only the named fields,
// simulating an asymmetric backend whose list payloads are summaries.
func WithSummaryFields(fields ...string) Option {
	return func(a *Adapter) { a.summaryFields = fields }
}

// Adapter is an ordered, mutex-guarded record store.
type Adapter struct {
	mu            sync.RWMutex
	idField       string
	caps          storage.Capabilities
	summaryFields []string
	items         []storage.Record
}

// New seeds an adapter with the given records. By default every
// capability flag is on and search covers all string fields.
func New(seed []storage.Record, opts ...Option) *Adapter {
	a := &Adapter{
		idField: storage.DefaultIDField,
		caps: storage.Capabilities{
			SupportsTotal:      true,
			SupportsFilters:    true,
			SupportsPagination: true,
			SupportsCaching:    true,
		},
		items: storage.CloneRecords(seed),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Capabilities implements storage.Adapter.
func (a *Adapter) Capabilities() storage.Capabilities { return a.caps }

// List implements storage.Adapter. Unsupported param classes are ignored
// the way a capability-less backend would ignore them.
func (a *Adapter) List(ctx context.Context, params storage.ListParams, _ storage.CallOptions) (storage.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListResult{}, err
	}

	if !a.caps.SupportsFilters {
		params.Filters = nil
		params.Search = ""
	}
	if !a.caps.SupportsPagination {
		params.Page = 0
		params.PageSize = 0
	}

	a.mu.RLock()
	items := storage.CloneRecords(a.items)
	a.mu.RUnlock()

	out, total := query.Execute(items, params, a.caps.SearchFields)
	if len(a.summaryFields) > 0 {
		out = a.summarize(out)
	}
	return storage.ListResult{Items: out, Total: total}, nil
}

// Get implements storage.Adapter.
func (a *Adapter) Get(ctx context.Context, id string, _ storage.CallOptions) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if rec, _, ok := a.find(id); ok {
		return rec.Clone(), nil
	}
	return nil, &storage.NotFoundError{Collection: "memory", ID: id}
}

// Create implements storage.Adapter, generating a uuid when the payload
// carries no id.
func (a *Adapter) Create(ctx context.Context, data storage.Record, _ storage.CallOptions) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := data.Clone()
	if rec == nil {
		rec = storage.Record{}
	}
	if rec.ID(a.idField) == "" {
		rec[a.idField] = uuid.New().String()
	}
	a.mu.Lock()
	a.items = append(a.items, rec)
	a.mu.Unlock()
	return rec.Clone(), nil
}

// Update implements storage.Adapter, replacing the record wholesale.
func (a *Adapter) Update(ctx context.Context, id string, data storage.Record, _ storage.CallOptions) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, i, ok := a.find(id)
	if !ok {
		return nil, &storage.NotFoundError{Collection: "memory", ID: id}
	}
	rec := data.Clone()
	if rec == nil {
		rec = storage.Record{}
	}
	rec[a.idField] = a.items[i][a.idField]
	a.items[i] = rec
	return rec.Clone(), nil
}

// Patch implements storage.Adapter, merging fields into the existing
// record.
func (a *Adapter) Patch(ctx context.Context, id string, data storage.Record, _ storage.CallOptions) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, i, ok := a.find(id)
	if !ok {
		return nil, &storage.NotFoundError{Collection: "memory", ID: id}
	}
	merged := rec.Clone()
	for k, v := range data {
		if k == a.idField {
			continue
		}
		merged[k] = v
	}
	a.items[i] = merged
	return merged.Clone(), nil
}

// Delete implements storage.Adapter.
func (a *Adapter) Delete(ctx context.Context, id string, _ storage.CallOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, i, ok := a.find(id)
	if !ok {
		return &storage.NotFoundError{Collection: "memory", ID: id}
	}
	a.items = append(a.items[:i:i], a.items[i+1:]...)
	return nil
}

// Len returns the number of stored records.
func (a *Adapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

func (a *Adapter) find(id string) (storage.Record, int, bool) {
	for i, rec := range a.items {
		if rec.ID(a.idField) == id {
			return rec, i, true
		}
	}
	return nil, -1, false
}

func (a *Adapter) summarize(items []storage.Record) []storage.Record {
	out := make([]storage.Record, len(items))
	for i, rec := range items {
		summary := make(storage.Record, len(a.summaryFields)+1)
		summary[a.idField] = rec[a.idField]
		for _, f := range a.summaryFields {
			if v, ok := rec[f]; ok {
				summary[f] = v
			}
		}
		out[i] = summary
	}
	return out
}
