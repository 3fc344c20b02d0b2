package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"budget/internal/auth"
	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/config"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
	"budget/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Warn("Failed to load .env file", applog.FieldError, err)
	}
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return cli.Fail(logger, "Configuration validation failed", err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
	}

	ctx, cancel := cli.GracefulShutdown(context.Background(), logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return cli.Fail(logger, "Invalid backend configuration", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return cli.Fail(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	deps := apphttp.Dependencies{
		Transactions: services.NewTransactionService(result.Store, result.Publisher()),
		Budgets:      services.NewBudgetService(result.Store, result.Store),
		Profiles:     services.NewProfileService(result.Store),
		Store:        result.Store,
		Logger:       logger,
	}
	if result.AMQP != nil {
		deps.Events = result.AMQP
	}

	var gotrue *auth.GoTrueClient
	if cfg.SupabaseURL != "" {
		gotrue = auth.NewGoTrueClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseServiceKey)
		deps.AuthProvider = gotrue
	}
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		deps.Verifier = auth.NewJWTVerifier(cfg.SupabaseJWTSecret, cfg.JWTAudience)
	default:
		deps.Verifier = gotrue
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		return cli.Fail(logger, "Failed to build HTTP server", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budget server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"auth_mode", cfg.AuthMode,
			"events", result.AMQP != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return cli.Fail(logger, "Server error", err, "port", cfg.Port)
	}
	logger.Info("Server stopped gracefully")
	return 0
}
