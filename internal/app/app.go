package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/crossflowio/crossflow/internal/ctxlog"
	"github.com/crossflowio/crossflow/internal/enrich"
	"github.com/crossflowio/crossflow/internal/mapping"
	"github.com/crossflowio/crossflow/internal/transpiler"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	pipeline *transpiler.Pipeline
}

// New constructs the application: an isolated logger, the mapping table
// loaded and validated once, and the transpilation pipeline wired to the
// optional description generator. A failure to load the mapping table is a
// fatal startup error.
func New(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	table, err := mapping.Load(ctx, cfg.MappingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping table: %w", err)
	}
	logger.Debug("Mapping table loaded and validated.", "entries", table.Len())

	var gen enrich.Generator
	if cfg.EnrichURL != "" {
		gen = enrich.NewHTTPGenerator(cfg.EnrichURL)
		logger.Debug("Description enrichment enabled.", "url", cfg.EnrichURL)
	}

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		pipeline: &transpiler.Pipeline{
			Table:         table,
			Generator:     gen,
			EnrichTimeout: cfg.EnrichTimeout,
			AnnotateRun:   cfg.AnnotateRun,
		},
	}, nil
}

// Pipeline returns the application's pipeline. This is primarily for testing.
func (a *App) Pipeline() *transpiler.Pipeline {
	return a.pipeline
}
