package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/tidycsv/internal/audit"
	"github.com/JonMunkholm/tidycsv/internal/config"
	"github.com/JonMunkholm/tidycsv/internal/logging"
	"github.com/JonMunkholm/tidycsv/internal/metrics"
	"github.com/JonMunkholm/tidycsv/internal/session"
	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/JonMunkholm/tidycsv/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	recorders := []audit.Recorder{audit.NewLogRecorder(logger)}
	if cfg.Database.URL != "" {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		pg, err := audit.NewPgRecorder(ctx, pool)
		if err != nil {
			return err
		}
		recorders = append(recorders, pg)
		logger.Info("audit trail persisted to database")
	}

	store := session.NewStore(session.StoreConfig{
		MaxSessions: cfg.Session.Max,
		IdleTimeout: cfg.Session.IdleTimeout,
		OnChange:    m.SetSessions,
	})
	loads := table.NewLoadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)

	server := web.NewServer(web.Deps{
		Config:   cfg,
		Store:    store,
		Loads:    loads,
		Recorder: audit.Multi(recorders...),
		Metrics:  m,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.RunJanitor(gctx, cfg.Session.SweepInterval)
		return nil
	})
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if n := loads.Active(); n > 0 {
			slog.Info("waiting for loads to complete", "active", n)
			if err := loads.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(db.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
