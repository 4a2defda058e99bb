// Package di wires entity managers from shared infrastructure: one hook
// registry, one signal dispatcher, one logger, and one detail-cache
// configuration reused across every manager an application constructs.
package di

import (
	"github.com/goliatone/go-entity-manager/cache"
	"github.com/goliatone/go-entity-manager/entity"
	"github.com/goliatone/go-entity-manager/hook"
	"github.com/goliatone/go-entity-manager/logging"
	"github.com/goliatone/go-entity-manager/signal"
)

// Config is the container construction surface.
type Config struct {
	// DetailCache is the sturdyc configuration applied to asymmetric
	// managers built through the container. Zero value selects
	// cache.DefaultConfig.
	DetailCache cache.Config

	// Logger defaults to logging.Nop.
	Logger logging.Logger

	// Signals defaults to an in-process signal.Dispatcher.
	Signals signal.Bus
}

// Container manages singleton collaborators for entity managers.
type Container struct {
	config  Config
	hooks   *hook.Registry
	signals signal.Bus
	logger  logging.Logger
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg Config) (*Container, error) {
	if cfg.DetailCache == (cache.Config{}) {
		cfg.DetailCache = cache.DefaultConfig()
	}
	if err := cfg.DetailCache.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop{}
	}
	if cfg.Signals == nil {
		cfg.Signals = signal.NewDispatcher()
	}

	return &Container{
		config:  cfg,
		hooks:   hook.NewRegistry(),
		signals: cfg.Signals,
		logger:  cfg.Logger,
	}, nil
}

// NewContainerWithDefaults creates a container using default
// configuration.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(Config{})
}

// Hooks returns the shared hook registry. Applications register
// presave/postsave/predelete/postdelete handlers here.
func (c *Container) Hooks() *hook.Registry { return c.hooks }

// Signals returns the shared signal bus.
func (c *Container) Signals() signal.Bus { return c.signals }

// Logger returns the shared logger.
func (c *Container) Logger() logging.Logger { return c.logger }

// Config returns a copy of the container configuration.
func (c *Container) Config() Config { return c.config }

// NewManager builds an entity manager wired to the container's hooks,
// signals, and logger. Asymmetric managers with record caching enabled
// and no explicit detail cache get the sturdyc-backed implementation
// configured on the container.
func NewManager(c *Container, opts entity.Options) (*entity.Manager, error) {
	if opts.Hooks == nil {
		opts.Hooks = c.hooks
	}
	if opts.Signals == nil {
		opts.Signals = c.signals
	}
	if opts.Logger == nil {
		opts.Logger = c.logger
	}

	if opts.Asymmetric && opts.DetailCacheTTL != 0 && opts.DetailCache == nil {
		cfg := c.config.DetailCache
		cfg.TTL = opts.DetailCacheTTL
		detail, err := cache.NewSturdycDetail(cfg)
		if err != nil {
			return nil, err
		}
		opts.DetailCache = detail
	}

	return entity.New(opts)
}
