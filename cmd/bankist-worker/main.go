package main

import (
	"context"
	"errors"
	"os"
	"time"

	"bankist/internal/amqp"
	"bankist/internal/cli"
	applog "bankist/internal/log"
	"bankist/internal/storage"
	"bankist/internal/worker"
)

// statsInterval is how often the worker logs its counters.
const statsInterval = time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting bankist-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	store, err := storage.NewSQLiteJournal(cfg.SQLiteDBPath)
	if err != nil {
		logger.Failure(ctx, "Failed to initialize SQLite journal", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	logger.Info("SQLite journal ready", "path", cfg.SQLiteDBPath, "schema_version", store.SchemaVersion())

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Failure(ctx, "Failed to initialize AMQP client", err)
		_ = store.Close()
		os.Exit(1)
	}

	w := worker.NewJournalWorker(store, logger.WithComponent(applog.ComponentJournal).Slog())

	reportStats := func(ctx context.Context) error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				processed, failed := w.Stats()
				total, err := store.Count(ctx)
				if err != nil {
					logger.Failure(ctx, "Failed to count journal events", err)
					continue
				}
				logger.Info("Journal worker stats", "processed", processed, "failed", failed, "stored", total)
			}
		}
	}

	cleanup := func(context.Context) error {
		return errors.Join(client.Close(), store.Close())
	}

	if err := cli.RunTasks(ctx, logger, 10*time.Second, cleanup,
		cli.Task{Name: "consume", Run: func(ctx context.Context) error { return w.Run(ctx, client) }},
		cli.Task{Name: "stats", Run: reportStats},
	); err != nil {
		logger.Failure(context.Background(), "bankist-worker stopped with error", err)
		os.Exit(1)
	}
}
