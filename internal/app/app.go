package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/inmemorystore"
	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *AppConfig
	registry *registry.Registry
	calc     *Calculator
	store    session.Store

	healthServer *http.Server
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW. Configuration defects are programmer errors
// and panic; the CLI recovers them into a clean message.
func NewApp(outW, logW io.Writer, appConfig *AppConfig, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Expression functions are resolved while parsing, so every module
	// registers before anything is loaded.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	calc, err := Load(ctx, reg, appConfig.AircraftField, appConfig.ConfigPaths...)
	if err != nil {
		panic(err)
	}
	logger.Info("Calculator loaded.",
		"fields", len(calc.Program.Catalog().IDs()),
		"pages", len(calc.Program.Pages()),
		"scenarios", len(calc.Model.Scenarios),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		calc:     calc,
		store:    inmemorystore.New(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Calculator returns the loaded configuration.
func (a *App) Calculator() *Calculator {
	return a.calc
}

// Store returns the live sessions of the HTTP API.
func (a *App) Store() session.Store {
	return a.store
}
