// Package journal defines the append-only audit trail of account movements.
//
// The journal is never read back to rebuild accounts: the in-memory store
// stays the only source of truth.
package journal

import "context"

// Ports for outbound adapters.
type (
	Recorder interface {
		Record(ctx context.Context, events ...Event) error
	}

	// Lister returns the most recent entries, newest first.
	Lister interface {
		Recent(ctx context.Context, limit int) ([]Event, error)
	}
)

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, ...Event) error { return nil }
