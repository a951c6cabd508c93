package app

import (
	"io"
	"log/slog"

	"github.com/vk/optspec/internal/builder"
	"github.com/vk/optspec/internal/metrics"
	"github.com/vk/optspec/internal/registry"
	"github.com/vk/optspec/internal/server"
	"github.com/vk/optspec/internal/session"
	"github.com/vk/optspec/internal/solver"
	"github.com/vk/optspec/internal/source"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	callables *source.Callables
	loader    *source.Loader
	registry  *registry.Registry
	metrics   *metrics.Set
	store     *session.Store
	server    *server.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// With no explicit modules the compiled-in core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All capability modules registered.", "count", len(modules))

	callables := source.NewCallables()
	loader := source.NewLoader(callables)

	sv := solver.NewBranchBound()
	if cfg.SolverMaxNodes > 0 {
		sv.MaxNodes = cfg.SolverMaxNodes
	}

	set := metrics.NewSet()
	store := session.NewStore(builder.New(loader, reg), sv, set)

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		callables: callables,
		loader:    loader,
		registry:  reg,
		metrics:   set,
		store:     store,
		server:    server.New(store, set.Handler()),
	}
}

// Logger returns the application's logger so callers can plumb it into
// request contexts.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Registry returns the application's capability registry. This is primarily
// for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Store returns the application's session store. This is primarily for
// testing.
func (a *App) Store() *session.Store {
	return a.store
}

// Callables returns the in-process data source hooks so callers can
// register their own before running.
func (a *App) Callables() *source.Callables {
	return a.callables
}

// Close releases pooled resources held by the data source loader.
func (a *App) Close() error {
	return a.loader.Close()
}
