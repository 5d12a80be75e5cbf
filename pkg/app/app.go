// Package app wires the process-wide services into one explicit root
// held by the embedding application: no module-level singletons for
// the DEM cache, the job engine or the preferences.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acerion/slavgps-core/pkg/aggregate"
	"github.com/acerion/slavgps-core/pkg/dem"
	"github.com/acerion/slavgps-core/pkg/events"
	"github.com/acerion/slavgps-core/pkg/jobs"
	"github.com/acerion/slavgps-core/pkg/settings"
	"github.com/acerion/slavgps-core/pkg/thumbnails"
	"github.com/acerion/slavgps-core/pkg/tracing"
)

// Version is stamped by the embedder's build.
var Version = "dev"

// App is the application root: every process-wide service, created
// once and passed by reference to the subsystems that need it.
type App struct {
	Settings   *settings.Settings
	Bus        *events.Bus
	DemCache   *dem.Cache
	Jobs       *jobs.Engine
	Thumbnails *thumbnails.Generator

	Top       *aggregate.Node
	Selection *aggregate.State

	logger          *slog.Logger
	tracingShutdown func(context.Context) error
}

// New creates the application root from the external settings store.
func New(ctx context.Context, store settings.Store, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := settings.New(store)

	tracingShutdown, err := tracing.Init(ctx, Version)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	bus := events.NewBus()
	thumbs, err := thumbnails.NewGenerator(cfg.ThumbnailDir(), thumbnails.DefaultSize, logger, bus)
	if err != nil {
		return nil, fmt.Errorf("creating thumbnail generator: %w", err)
	}

	return &App{
		Settings:        cfg,
		Bus:             bus,
		DemCache:        dem.NewCache(logger),
		Jobs:            jobs.NewEngine(cfg.CPUPoolSize(), cfg.NetworkPoolSize(), logger),
		Thumbnails:      thumbs,
		Top:             aggregate.New("Top Layer"),
		Selection:       aggregate.NewState(),
		logger:          logger,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Shutdown cancels every background job, waits for their cleanups and
// flushes tracing.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Jobs.Shutdown(ctx)
	if terr := a.tracingShutdown(ctx); terr != nil && err == nil {
		err = terr
	}
	return err
}
