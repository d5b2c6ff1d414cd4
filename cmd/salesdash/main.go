package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"salesdash/internal/branch"
	"salesdash/internal/cache"
	"salesdash/internal/cli"
	"salesdash/internal/dashboard"
	apphttp "salesdash/internal/http"
	"salesdash/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	res, err := cli.OpenBackend(startCtx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	registry, err := branch.Load(startCtx, res.Backend)
	if err != nil {
		logger.Error("Failed to load branches", log.FieldOperation, log.OpLoad, log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Branches loaded", log.FieldOperation, log.OpLoad, log.FieldBackend, cfg.DataBackend, log.FieldRecords, len(registry.List()))

	policy, err := branch.ParsePolicy(cfg.UnknownBranchPolicy)
	if err != nil {
		logger.Error("Invalid unknown branch policy", log.FieldOperation, log.OpValidate, log.FieldError, err)
		os.Exit(1)
	}

	summaries := cache.NewLRUCache[dashboard.Summary](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(summaries)
	caches.StartCleanup(cfg.CacheTTL)

	service := dashboard.NewService(registry, dashboard.WithCache(summaries), dashboard.WithLogger(logger))
	srv, err := apphttp.NewServer(":"+cfg.Port, service, apphttp.Options{
		Policy:          policy,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
		caches.Stop()
	})

	logger.Info("Starting salesdash server", log.FieldOperation, log.OpStartup, "port", cfg.Port, log.FieldBackend, cfg.DataBackend, "unknown_branch_policy", string(policy))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
