// Package backend builds the journal backend selected in configuration.
package backend

import (
	"context"

	"bankist/internal/journal"
)

// Journal is what every backend provides to the web app.
type Journal interface {
	journal.Recorder
	journal.Lister
}

type CleanupFunc func() error

// HealthFunc reports whether the backend can currently accept events.
type HealthFunc func(ctx context.Context) error

type BackendResult struct {
	Journal Journal
	Health  HealthFunc
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	AMQPBackend   BackendType = "amqp"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, AMQPBackend:
		return true
	}
	return false
}
