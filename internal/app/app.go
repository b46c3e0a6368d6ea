package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/specialistvlad/modgen/internal/ctxlog"
	"github.com/specialistvlad/modgen/internal/descriptor"
	"github.com/specialistvlad/modgen/internal/emitter"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	loader  descriptor.Loader
	fetcher emitter.Fetcher
}

// Option customizes an App.
type Option func(*App)

// WithLoader replaces the HCL descriptor loader.
func WithLoader(l descriptor.Loader) Option {
	return func(a *App) { a.loader = l }
}

// WithFetcher sets the collaborator that acquires fetch blocks.
func WithFetcher(f emitter.Fetcher) Option {
	return func(a *App) { a.fetcher = f }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: descriptor.NewLoader(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Context returns ctx carrying the application's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Layout is the set of directories below the output root.
type Layout struct {
	Out   string
	Cache string
	Fetch string
	Gen   string
	Build string
}

// NewLayout derives the directory layout from an output root.
func NewLayout(out string) Layout {
	cache := filepath.Join(out, "cache")
	return Layout{
		Out:   out,
		Cache: cache,
		Fetch: filepath.Join(cache, "fetch"),
		Gen:   filepath.Join(out, "gen"),
		Build: filepath.Join(out, "build"),
	}
}

// layout resolves the output root: the configured override wins over the
// project's out_dir.
func (a *App) layout(project descriptor.Project) Layout {
	if a.config.OutDir != "" {
		out, err := filepath.Abs(a.config.OutDir)
		if err != nil {
			out = a.config.OutDir
		}
		return NewLayout(out)
	}
	return NewLayout(project.OutDir)
}
