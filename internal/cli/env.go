package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ganot/crewsync/internal/app"
	"github.com/ganot/crewsync/internal/config"
	"github.com/ganot/crewsync/internal/store"
)

// env is what every database-backed command needs.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	app    *app.App
	out    *OutputFormatter
	close  func()
}

func loadConfig(opts *RootOptions) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load .env", err)
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "config error", err)
	}
	return cfg, nil
}

// openEnv loads config, opens and migrates the store, and wires services.
// Logs go to console.
func openEnv(ctx context.Context, cmd *cobra.Command, opts *RootOptions, console io.Writer) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return newEnv(ctx, cmd, opts, cfg, console)
}

// newEnv is openEnv for a config the caller already loaded.
func newEnv(ctx context.Context, cmd *cobra.Command, opts *RootOptions, cfg config.Config, console io.Writer) (*env, error) {
	logger, closeLog, err := newLogger(cfg.Log, console)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "log file error", err)
	}

	db, err := openStore(ctx, cfg.DB, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	a := app.New(db, app.Options{
		PinMaxAttempts: cfg.Pin.MaxAttempts,
		AuthEnabled:    cfg.Auth.Enabled,
		TransportMode:  cfg.Transport.Mode,
		TrustProxy:     cfg.Server.TrustProxy,
	}, logger)

	return &env{
		cfg:    cfg,
		logger: logger,
		app:    a,
		out:    &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
			_ = closeLog()
		},
	}, nil
}

func openStore(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*store.DB, error) {
	if cfg.Driver == store.DriverSQLite {
		if err := ensureDir(cfg.Path); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to prepare database path", err)
		}
	}

	db, err := store.Open(cfg.Driver, cfg.Source())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "failed to run migrations", err)
	}
	logger.Debug("database ready", "driver", cfg.Driver)
	return db, nil
}
