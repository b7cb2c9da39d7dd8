package main

import (
	"context"
	"net/http"
	"os"

	"burnrate/internal/auth"
	"burnrate/internal/cli"
	"burnrate/internal/config"
	apphttp "burnrate/internal/http"
	applog "burnrate/internal/log"
	"burnrate/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).ValidateServer)

	_, bcfg, be := cli.InitBackend(context.Background(), logger.Logger, cfg)

	authenticator, err := auth.New(auth.Config{
		Password:     cfg.DashboardPassword,
		PasswordHash: cfg.DashboardPasswordHash,
		Secret:       cfg.SessionSecret,
		Secure:       cfg.IsProduction(),
	})
	if err != nil {
		logger.Error("Failed to initialize authentication", "error", err)
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}, apphttp.Services{
		Ledger:    services.NewLedgerService(be.Store, be.Publisher),
		Import:    services.NewImportService(be.Store, be.Publisher),
		Dashboard: services.NewDashboardService(be.Store),
		Auth:      authenticator,
		Health:    be.Store,
	})

	ctx, done := cli.GracefulShutdown(logger.Logger, cli.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting burnrate server",
		"port", cfg.Port,
		"backend", bcfg.Type,
		"amqp_enabled", be.Publisher != nil,
		"env", cfg.AppEnv)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		applog.LogError(context.Background(), "Server error", err, applog.OpStartup,
			applog.NewFields().WithComponent(applog.ComponentHTTP))
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
