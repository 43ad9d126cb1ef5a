package main

import (
	"context"
	"net"
	"os"
	"time"

	"bankist/internal/backend"
	"bankist/internal/bank"
	"bankist/internal/cli"
	"bankist/internal/core"
	apphttp "bankist/internal/http"
	applog "bankist/internal/log"
	"bankist/internal/ui"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	logger.Info("Starting bankist")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cli.EnsureSessionSecret(cfg, logger); err != nil {
		logger.Failure(context.Background(), "Session secret unavailable", err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Failure(ctx, "Invalid journal backend configuration", err)
		os.Exit(1)
	}
	journalBackend, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Failure(ctx, "Failed to create journal backend", err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	var accounts []*core.Account
	if cfg.SeedDemoAccounts {
		accounts = bank.DemoAccounts()
	}

	hub := apphttp.NewLiveHub(logger.WithComponent(applog.ComponentLive).Slog())
	b := bank.New(accounts, bank.Options{
		LoanDelay:      cfg.LoanApprovalDelay,
		Recorder:       journalBackend.Journal,
		Logger:         logger.WithComponent(applog.ComponentBank).Slog(),
		OnLoanCredited: hub.NotifyAccount,
	})
	logger.Info("Bank ready",
		"accounts", len(b.Accounts()),
		"loan_delay", cfg.LoanApprovalDelay,
		"journal_backend", backendCfg.Type)

	srv := apphttp.NewServer(ui.NewController(b, time.Now), hub, apphttp.Options{
		Addr:               net.JoinHostPort("", cfg.Port),
		SessionSecret:      cfg.SessionSecret,
		SessionTTL:         cfg.SessionTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Health:             journalBackend.Health,
		Activity:           journalBackend.Journal,
		Logger:             logger,
	})

	cleanup := func(context.Context) error {
		if n := b.PendingLoans(); n > 0 {
			logger.Warn("Dropping loans not yet credited", "count", n)
		}
		b.Close()
		return journalBackend.Cleanup()
	}
	if err := cli.RunTasks(ctx, logger, 10*time.Second, cleanup,
		cli.Task{Name: "http", Run: srv.Run},
	); err != nil {
		logger.Failure(context.Background(), "bankist stopped with error", err)
		os.Exit(1)
	}
}
