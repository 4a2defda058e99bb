package entity

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-entity-manager/logging"
	"github.com/goliatone/go-entity-manager/storage"
)

// Resolution is the outcome of storage routing: which adapter handles the
// call, an optional collection path override, and an optional parameter
// rename table.
type Resolution struct {
	Storage  storage.Adapter
	Path     string
	ParamMap map[string]string
}

// CallOptions converts the routing outcome into per-call adapter options.
func (r Resolution) CallOptions() storage.CallOptions {
	return storage.CallOptions{Path: r.Path, ParamMap: r.ParamMap}
}

// Router decides, per operation, which storage a manager call goes to.
// The default implementation always returns the manager's configured
// storage; applications inject their own to inspect the parent chain.
type Router interface {
	Resolve(method string, parents ParentContext) (Resolution, error)
}

// RouterFunc adapts a function to the Router interface.
type RouterFunc func(method string, parents ParentContext) (Resolution, error)

// Resolve implements Router.
func (f RouterFunc) Resolve(method string, parents ParentContext) (Resolution, error) {
	return f(method, parents)
}

// StorageFactory lazily constructs an alternate storage. A factory is
// invoked at most once per route regardless of call count.
type StorageFactory func() (storage.Adapter, error)

// ParentRoute declares static parent-scoped routing: when the tail of the
// parent chain matches Chain, calls go to the route's storage (or the
// default one) with the expanded Path and the Params rename table.
type ParentRoute struct {
	// Chain is the sequence of parent entity names matched against the
	// tail of the chain, e.g. ["bots"] or ["users", "posts"].
	Chain []string

	// Path is a template for the collection path override. "{id}" expands
	// to the innermost matched parent's id, "{<entity>}" to that parent's
	// id, e.g. "/bots/{id}/commands" or "/users/{users}/posts/{posts}".
	Path string

	// Params renames outgoing parameter keys for this route.
	Params map[string]string

	// Storage lazily builds the alternate storage for this route. Nil
	// keeps the manager's default storage.
	Storage StorageFactory
}

type staticRoute struct {
	route   ParentRoute
	once    sync.Once
	adapter storage.Adapter
	err     error
}

// StaticRouter matches declared parent routes against the call-time
// chain, most specific (longest) chain first, and memoizes alternate
// storages for the router's lifetime.
type StaticRouter struct {
	fallback storage.Adapter
	routes   []*staticRoute
	log      logging.Logger
}

// NewStaticRouter builds a router over the declared routes. fallback is
// the manager's default storage, returned when no route matches.
func NewStaticRouter(fallback storage.Adapter, routes []ParentRoute, log logging.Logger) *StaticRouter {
	if log == nil {
		log = logging.Nop{}
	}
	wrapped := make([]*staticRoute, len(routes))
	for i := range routes {
		wrapped[i] = &staticRoute{route: routes[i]}
	}
	sort.SliceStable(wrapped, func(i, j int) bool {
		return len(wrapped[i].route.Chain) > len(wrapped[j].route.Chain)
	})
	return &StaticRouter{fallback: fallback, routes: wrapped, log: log}
}

// Resolve implements Router.
func (r *StaticRouter) Resolve(method string, parents ParentContext) (Resolution, error) {
	for _, sr := range r.routes {
		if !chainMatches(sr.route.Chain, parents) {
			continue
		}
		adapter, err := sr.storage(r.fallback, r.log)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{
			Storage:  adapter,
			Path:     expandPath(sr.route.Path, parents),
			ParamMap: sr.route.Params,
		}, nil
	}
	return Resolution{Storage: r.fallback}, nil
}

func (sr *staticRoute) storage(fallback storage.Adapter, log logging.Logger) (storage.Adapter, error) {
	if sr.route.Storage == nil {
		return fallback, nil
	}
	sr.once.Do(func() {
		log.Debug("instantiating route storage", logging.Fields{
			"chain": strings.Join(sr.route.Chain, "/"),
		})
		sr.adapter, sr.err = sr.route.Storage()
		if sr.err == nil && sr.adapter == nil {
			sr.err = fmt.Errorf("entity: storage factory for route %q returned nil", strings.Join(sr.route.Chain, "/"))
		}
	})
	return sr.adapter, sr.err
}

// chainMatches reports whether the route chain equals the tail of the
// parent chain. An empty route chain only matches an empty parent chain,
// keeping unscoped calls on the default storage.
func chainMatches(chain []string, parents ParentContext) bool {
	if len(chain) == 0 {
		return len(parents) == 0
	}
	if len(parents) < len(chain) {
		return false
	}
	tail := parents[len(parents)-len(chain):]
	for i, entity := range chain {
		if tail[i].Entity != entity {
			return false
		}
	}
	return true
}

// expandPath substitutes {id} and {<entity>} placeholders with parent
// ids.
func expandPath(tmpl string, parents ParentContext) string {
	if tmpl == "" {
		return ""
	}
	out := tmpl
	for _, ref := range parents {
		out = strings.ReplaceAll(out, "{"+ref.Entity+"}", ref.ID)
	}
	if last, ok := parents.Last(); ok {
		out = strings.ReplaceAll(out, "{id}", last.ID)
	}
	return out
}
