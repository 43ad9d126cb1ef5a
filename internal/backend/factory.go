package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bankist/internal/amqp"
	"bankist/internal/journal"
	"bankist/internal/services"
	"bankist/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case AMQPBackend:
		return f.createAMQPBackend(ctx, config)
	default:
		return f.createMemoryBackend(config)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized memory journal", "cap", config.MemoryCap)
	return &BackendResult{
		Journal: journal.NewMemoryJournal(config.MemoryCap),
		Health:  func(context.Context) error { return nil },
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(_ context.Context, config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteJournal(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite journal: %w", err)
	}

	f.logger.Info("Initialized SQLite journal", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Journal: store,
		Health:  store.Ping,
		Cleanup: store.Close,
	}, nil
}

// createAMQPBackend stores locally and publishes to the broker. A broker
// that cannot be reached at startup degrades to local-only recording.
func (f *DefaultFactory) createAMQPBackend(_ context.Context, config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteJournal(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite journal: %w", err)
	}

	var publisher services.Publisher
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without publishing", "error", err)
	} else {
		publisher = client
		f.logger.Info("Initialized AMQP client",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
	}

	svc := services.NewJournalService(store, publisher, f.logger)
	health := func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return err
		}
		if client == nil || !client.Healthy() {
			return errors.New("amqp publisher unavailable")
		}
		return nil
	}

	f.logger.Info("Initialized AMQP journal",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", client != nil)

	return &BackendResult{
		Journal: svc,
		Health:  health,
		Cleanup: svc.Close,
	}, nil
}
