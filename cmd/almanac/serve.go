// serve.go runs the HTTP server until SIGINT or SIGTERM.

package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/keyxmakerx/almanac/internal/app"
	"github.com/keyxmakerx/almanac/internal/config"
	"github.com/keyxmakerx/almanac/internal/database"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the calendar HTTP API",
		Long: `Run the calendar HTTP API on PORT.

With STORAGE_ENABLED=true custom calendar definitions are kept in MariaDB
(migrated on startup) and cached in Redis. Otherwise they live in memory,
seeded from DEFINITIONS_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setupLogging(cfg, os.Stdout)
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting Almanac",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.Bool("storage", cfg.Storage.Enabled),
	)

	var (
		db  *sql.DB
		rdb *redis.Client
		err error
	)
	if cfg.Storage.Enabled {
		db, err = database.NewMariaDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("connected to MariaDB")

		schemaVersion, err := database.RunMigrations(db, cfg.Storage.MigrationsPath)
		if err != nil {
			return err
		}
		slog.Info("database schema ready", slog.Uint64("version", uint64(schemaVersion)))

		rdb, err = database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		slog.Info("connected to Redis")
	}

	application, err := app.New(cfg, db, rdb)
	if err != nil {
		return err
	}
	if err := application.LoadDefinitions(ctx); err != nil {
		return err
	}
	if err := application.RegisterRoutes(); err != nil {
		return err
	}
	if err := application.StartSync(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- application.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	// Give in-flight requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", slog.Any("error", err))
		return err
	}
	slog.Info("server stopped")
	return nil
}
