// Package services combines the local journal store with the broker.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bankist/internal/journal"
)

// Store is the local, authoritative copy of the journal.
type Store interface {
	journal.Recorder
	journal.Lister
	Close() error
}

// Publisher forwards events to the worker.
type Publisher interface {
	PublishEvent(ctx context.Context, e journal.Event) error
	Close() error
}

// JournalService saves events locally and then publishes them. A failed
// publish never fails the caller: the event is already stored.
type JournalService struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

// NewJournalService accepts a nil publisher, in which case events stay local.
func NewJournalService(store Store, publisher Publisher, logger *slog.Logger) *JournalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *JournalService) Record(ctx context.Context, events ...journal.Event) error {
	if err := s.store.Record(ctx, events...); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	if s.publisher == nil {
		return nil
	}
	for _, e := range events {
		if err := s.publisher.PublishEvent(ctx, e); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish journal event",
				"event_id", e.ID,
				"event_kind", e.Kind,
				"error", err)
		}
	}
	return nil
}

func (s *JournalService) Recent(ctx context.Context, limit int) ([]journal.Event, error) {
	return s.store.Recent(ctx, limit)
}

// Close closes the publisher and the store, reporting both failures.
func (s *JournalService) Close() error {
	var errs []error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close journal service: %w", err)
	}
	return nil
}
