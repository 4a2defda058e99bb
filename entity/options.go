package entity

import (
	"errors"
	"time"

	"github.com/goliatone/go-entity-manager/cache"
	"github.com/goliatone/go-entity-manager/hook"
	"github.com/goliatone/go-entity-manager/logging"
	"github.com/goliatone/go-entity-manager/signal"
	"github.com/goliatone/go-entity-manager/storage"
)

// DefaultLocalFilterThreshold is the largest collection total eligible
// for full snapshot caching when Options leaves the threshold unset.
const DefaultLocalFilterThreshold = 100

// CachingDisabled disables list caching entirely when assigned to
// Options.LocalFilterThreshold.
const CachingDisabled = -1

// TTLNever makes detail-cache entries permanent when assigned to
// Options.DetailCacheTTL.
const TTLNever = cache.TTLNever

// ErrReadOnly is returned by mutation operations on a read-only manager.
var ErrReadOnly = errors.New("entity: manager is read-only")

// Options is the construction surface of a Manager.
type Options struct {
	// Name identifies the entity collection. Used for signal and metric
	// labels. Required.
	Name string

	// IDField is the record field acting as identity. Default "id".
	IDField string

	// Storage is the default backend. Required.
	Storage storage.Adapter

	// Router overrides storage routing entirely. When nil, a static
	// router is built from Parents over the default storage.
	Router Router

	// Parents declares static parent-scoped routing, consulted only when
	// Router is nil.
	Parents []ParentRoute

	// LocalFilterThreshold is the largest collection total eligible for
	// caching. Zero selects DefaultLocalFilterThreshold; CachingDisabled
	// (negative) turns list caching off.
	LocalFilterThreshold int

	// Asymmetric marks list responses as summaries: only Get returns
	// full detail, and Get is served through the detail cache.
	Asymmetric bool

	// DetailCacheTTL controls the asymmetric detail cache: 0 disables
	// per-record caching, TTLNever keeps entries forever, any positive
	// value expires entries lazily at read time.
	DetailCacheTTL time.Duration

	// DetailCache overrides the default map-backed detail cache, e.g.
	// with the sturdyc-backed implementation from cache.NewSturdycDetail.
	// Only consulted in asymmetric mode with a non-zero TTL.
	DetailCache cache.Detail

	// ReadOnly rejects every mutation with ErrReadOnly before hooks or
	// storage are touched.
	ReadOnly bool

	// Hooks receives presave/postsave/predelete/postdelete invocations.
	// Default: no hooks.
	Hooks hook.Invoker

	// Signals receives entity lifecycle and data-invalidation signals.
	// Default: discard.
	Signals signal.Bus

	// Logger receives diagnostics. Default: discard.
	Logger logging.Logger
}

// Validate checks the construction surface.
func (o Options) Validate() error {
	if o.Name == "" {
		return &ConfigError{Field: "Name", Message: "is required"}
	}
	if o.Storage == nil {
		return &ConfigError{Field: "Storage", Message: "is required"}
	}
	if o.Router != nil && len(o.Parents) > 0 {
		return &ConfigError{Field: "Parents", Message: "cannot be combined with a custom Router"}
	}
	return nil
}

// ConfigError reports an invalid Options field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "entity: config error in field " + e.Field + ": " + e.Message
}

func (o Options) threshold() int {
	switch {
	case o.LocalFilterThreshold < 0:
		return 0
	case o.LocalFilterThreshold == 0:
		return DefaultLocalFilterThreshold
	default:
		return o.LocalFilterThreshold
	}
}
