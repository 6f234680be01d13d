package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/casadonazulmira/painel-api/cache"
	"github.com/casadonazulmira/painel-api/config"
	"github.com/casadonazulmira/painel-api/data"
	"github.com/casadonazulmira/painel-api/handlers"
	"github.com/casadonazulmira/painel-api/health"
	"github.com/casadonazulmira/painel-api/logging"
	"github.com/casadonazulmira/painel-api/scheduler"
	"github.com/casadonazulmira/painel-api/server"
	"github.com/casadonazulmira/painel-api/upstream"
	"github.com/joho/godotenv"

	_ "net/http/pprof"
)

func main() {
	// Read the env variables; fall back to the executable directory so the
	// binary can run from systemd with a .env next to it
	if err := godotenv.Load(); err != nil {
		if ex, exErr := os.Executable(); exErr == nil {
			_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs")

	logging.Info("Starting panel gateway",
		"env", cfg.Env,
		"upstream", cfg.UpstreamBaseURL,
		"catalog_refresh", cfg.CatalogRefresh.String())

	// Upstream backend client, shared by handlers and the catalog refresher
	client := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)

	// In-memory catalog store with atomic swaps
	catalogos := data.NewCatalogContainer()

	// Response cache; disabled when REDIS_ADDR is empty
	respCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
	defer respCache.Close()
	if respCache.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := respCache.Ping(ctx); err != nil {
			logging.Warn("Redis unreachable, responses will not be cached", "error", err)
		}
		cancel()
	}

	// Periodic catalog refresh using the service token
	agendador := scheduler.NewCatalogScheduler(catalogos, client, cfg.UpstreamServiceToken, cfg.CatalogRefresh)
	if err := agendador.Start(); err != nil {
		logging.Error("Failed to start the catalog scheduler", "error", err)
		os.Exit(1)
	}
	defer agendador.Stop()

	healthChecker := health.NewHealthChecker(catalogos, cfg.CatalogRefresh)

	handler := handlers.NewHTTPHandler(client, catalogos, respCache, healthChecker, agendador)

	srv := server.NewServer(cfg, handler)

	// Run the server in a goroutine so shutdown signals can be handled
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logging.Error("Server error", "error", err)
		os.Exit(1)
	case sig := <-stop:
		logging.Info("Received shutdown signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}
