package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/waypoint/internal/catalog"
	"github.com/roach88/waypoint/internal/config"
	"github.com/roach88/waypoint/internal/engine"
	"github.com/roach88/waypoint/internal/pgstore"
	"github.com/roach88/waypoint/internal/store"
)

// ErrCodeConfig is reported when configuration cannot be loaded.
const ErrCodeConfig = "E000"

var (
	_ engine.Store = (*store.Store)(nil)
	_ engine.Store = (*pgstore.Store)(nil)
)

// App bundles everything a command needs: resolved config, catalog,
// store and engine. Close releases the store.
type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Engine  *engine.Engine
	Logger  *slog.Logger
	Store   engine.Store

	closeStore func() error
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

// loadConfig loads the config file and environment, then applies flag
// overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Database != "" {
		if cfg.Database.Driver == "postgres" {
			cfg.Database.DSN = opts.Database
		} else {
			cfg.Database.Path = opts.Database
		}
	}
	if opts.CatalogDir != "" {
		cfg.Catalog.Dir = opts.CatalogDir
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs always go to w (stderr) so
// JSON output on stdout stays parseable.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// loadCatalog loads a catalog directory, reporting load and validation
// failures through the formatter.
func loadCatalog(f *OutputFormatter, dir string) (*catalog.Catalog, error) {
	cat, err := catalog.LoadDir(dir)
	if err == nil {
		return cat, nil
	}

	var loadErr *catalog.LoadError
	var valErrs catalog.ValidationErrors
	switch {
	case errors.As(err, &loadErr):
		_ = f.Error(loadErr.Code, loadErr.Message, nil)
	case errors.As(err, &valErrs):
		_ = f.Error(catalog.ErrCodeGeneric, fmt.Sprintf("catalog has %d validation error(s)", len(valErrs)), valErrs)
	default:
		_ = f.Error(catalog.ErrCodeGeneric, err.Error(), nil)
	}
	return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
}

// openStore opens the configured database and returns it with its
// close function.
func openStore(ctx context.Context, db config.DatabaseConfig) (engine.Store, func() error, error) {
	switch db.Driver {
	case "postgres":
		s, err := pgstore.Open(ctx, pgstore.Config{DSN: db.DSN, MaxConns: db.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s, err := store.Open(db.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}

// openApp resolves config and opens the catalog, store and engine.
// The caller must Close the returned App.
func openApp(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	cat, err := loadCatalog(f, cfg.Catalog.Dir)
	if err != nil {
		return nil, err
	}
	f.VerboseLog("Loaded catalog from %s", cfg.Catalog.Dir)

	ctx := commandContext(cmd)
	st, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		_ = f.Error("PERSISTENCE", err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	logger.Debug("database ready", "driver", cfg.Database.Driver)

	eng := engine.New(cat, st,
		engine.WithLogger(logger),
		engine.WithPrerequisitePolicy(cfg.PrerequisitePolicy()),
		engine.WithVerifyCacheSize(cfg.Engine.VerifyCacheSize),
	)
	if err := eng.SeedBadges(ctx); err != nil {
		_ = closeStore()
		return nil, f.EngineError(err)
	}

	return &App{
		Config:     cfg,
		Catalog:    cat,
		Engine:     eng,
		Logger:     logger,
		Store:      st,
		closeStore: closeStore,
	}, nil
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
