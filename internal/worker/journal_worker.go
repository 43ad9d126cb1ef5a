// Package worker drains journal events from the broker into SQLite.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"bankist/internal/journal"
)

// Consumer delivers events to handler until ctx is done or the
// subscription breaks.
type Consumer interface {
	ConsumeEvents(ctx context.Context, handler func(context.Context, journal.Event) error) error
}

type JournalWorker struct {
	sink      journal.Recorder
	logger    *slog.Logger
	retryWait time.Duration

	processed atomic.Int64
	failed    atomic.Int64
}

func NewJournalWorker(sink journal.Recorder, logger *slog.Logger) *JournalWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalWorker{
		sink:      sink,
		logger:    logger,
		retryWait: 5 * time.Second,
	}
}

// HandleEvent stores one delivered event. Storage is idempotent on the
// event id, so redeliveries are safe.
func (w *JournalWorker) HandleEvent(ctx context.Context, e journal.Event) error {
	if err := w.sink.Record(ctx, e); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("store event %s: %w", e.ID, err)
	}
	w.processed.Add(1)
	w.logger.InfoContext(ctx, "Journal event stored",
		"event_id", e.ID,
		"event_kind", e.Kind,
		"user_name", e.UserName,
		"amount", e.Amount.String())
	return nil
}

// Run consumes until ctx is cancelled, resubscribing after a broken
// subscription.
func (w *JournalWorker) Run(ctx context.Context, c Consumer) error {
	for {
		err := c.ConsumeEvents(ctx, w.HandleEvent)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.WarnContext(ctx, "Consumer stopped, retrying", "error", err, "retry_in", w.retryWait)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.retryWait):
		}
	}
}

// Stats returns how many events were stored and how many failed.
func (w *JournalWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
