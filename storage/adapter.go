// Package storage defines the contract between the entity manager and its
// pluggable backends: schemaless records, static capability flags, and the
// list/get/create/update/patch/delete surface every adapter implements.
package storage

import "context"

// Capabilities are the static flags an adapter declares at construction.
// The manager consults them when deciding whether a collection is
// cacheable and how search should behave.
type Capabilities struct {
	// SupportsTotal indicates list responses carry an authoritative total.
	SupportsTotal bool

	// SupportsFilters indicates the backend applies filter params itself.
	SupportsFilters bool

	// SupportsPagination indicates the backend honors page/page size.
	SupportsPagination bool

	// SupportsCaching marks the collection as eligible for full snapshot
	// caching when it is small enough.
	SupportsCaching bool

	// SearchFields restricts text search to the named fields. Empty means
	// every string-valued field is searched.
	SearchFields []string

	// Asymmetric marks list responses as summaries; only Get returns the
	// full record.
	Asymmetric bool
}

// ListParams carries query parameters for a list call. The zero value
// requests the whole collection with backend-default ordering.
type ListParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string // "asc" or "desc"
	Search    string
	Filters   map[string]any

	// CacheSafe permits the manager to serve a filtered query from its
	// list cache instead of forcing a live backend call.
	CacheSafe bool
}

// HasFilters reports whether the params restrict the result set.
func (p ListParams) HasFilters() bool {
	return p.Search != "" || len(p.Filters) > 0
}

// ListResult is the backend's answer to a list call.
type ListResult struct {
	Items []Record
	Total int
}

// CallOptions carry per-call routing values produced by storage
// resolution: an alternate collection path and a parameter rename table.
type CallOptions struct {
	// Path overrides the adapter's default collection path. Adapters that
	// have no path concept ignore it.
	Path string

	// ParamMap renames outgoing parameter/filter keys before the call.
	ParamMap map[string]string
}

// Adapter is the pluggable storage backend. Implementations own their
// retry policy and error types; the manager propagates failures
// unchanged.
type Adapter interface {
	Capabilities() Capabilities
	List(ctx context.Context, params ListParams, opts CallOptions) (ListResult, error)
	Get(ctx context.Context, id string, opts CallOptions) (Record, error)
	Create(ctx context.Context, data Record, opts CallOptions) (Record, error)
	Update(ctx context.Context, id string, data Record, opts CallOptions) (Record, error)
	Patch(ctx context.Context, id string, data Record, opts CallOptions) (Record, error)
	Delete(ctx context.Context, id string, opts CallOptions) error
}

// RenameFilters applies a CallOptions param rename table to a filter map,
// leaving unmapped keys untouched. A nil table returns the input as-is.
func (o CallOptions) RenameFilters(filters map[string]any) map[string]any {
	if len(o.ParamMap) == 0 || len(filters) == 0 {
		return filters
	}
	out := make(map[string]any, len(filters))
	for k, v := range filters {
		if mapped, ok := o.ParamMap[k]; ok {
			out[mapped] = v
			continue
		}
		out[k] = v
	}
	return out
}
