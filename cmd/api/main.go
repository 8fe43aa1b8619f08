package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vibe-with-wyn/green-roots/internal/api"
	"github.com/vibe-with-wyn/green-roots/internal/auth"
	"github.com/vibe-with-wyn/green-roots/internal/config"
	"github.com/vibe-with-wyn/green-roots/internal/domain"
	"github.com/vibe-with-wyn/green-roots/internal/persistence/memory"
	"github.com/vibe-with-wyn/green-roots/internal/persistence/postgres"
	httptransport "github.com/vibe-with-wyn/green-roots/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("green-roots api stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	service := domain.NewService(store, logger.With("component", "decisions"))
	guard := domain.NewAccessGuard(store, logger.With("component", "access"))
	handler := api.NewHandler(service, guard, logger, api.Options{
		PhotoCacheMaxAge: cfg.PhotoCacheMaxAge,
		Location:         cfg.Location(),
	})

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		auth.SkipPaths("/healthz", "/metrics"),
	)

	r := chi.NewRouter()
	r.Use(httptransport.RequestID)
	r.Use(httptransport.RequestLogger(logger))
	r.Use(httptransport.CORS(cfg.CORSAllowedOrigin))
	r.Use(authMiddleware.Wrap)
	handler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), r)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("green-roots api listening", "address", cfg.HTTPAddress, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("green-roots api stopped cleanly")
	return nil
}

// buildStore selects the store backend based on configuration.
func buildStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	case config.StoreDriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.PoolConfig{
			URL:      cfg.PostgresURL,
			MaxConns: int32(cfg.PostgresMaxConns),
		})
		if err != nil {
			return nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
			logger.Info("database migrations applied")
		}
		return postgres.NewStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
