package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bankist/internal/config"
	"bankist/internal/journal"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    BackendType
		wantErr bool
	}{
		{"memory", "memory", MemoryBackend, false},
		{"sqlite", "sqlite", SQLiteBackend, false},
		{"amqp", "amqp", AMQPBackend, false},
		{"unknown", "sheets", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromAppConfig(&config.Config{JournalBackend: tt.backend, SQLiteDBPath: "x.db"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Type != tt.want {
				t.Errorf("Type = %v, want %v", cfg.Type, tt.want)
			}
		})
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"amqp without url", Config{Type: AMQPBackend, SQLiteDBPath: "x.db"}, true},
		{"amqp complete", Config{Type: AMQPBackend, SQLiteDBPath: "x.db", AMQPURL: "amqp://localhost/"}, false},
		{"invalid type", Config{Type: "sheets"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	factory := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	configs := map[string]Config{
		"memory": {Type: MemoryBackend, MemoryCap: 10},
		"sqlite": {Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "journal.db")},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			result, err := factory.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer result.Cleanup()

			if err := result.Health(ctx); err != nil {
				t.Errorf("Health() error = %v", err)
			}
			e := journal.NewEvent(journal.LoanCredited, "acc-1", "js", decimal.NewFromInt(500), time.Now())
			if err := result.Journal.Record(ctx, e); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			recent, err := result.Journal.Recent(ctx, 1)
			if err != nil || len(recent) != 1 || recent[0].ID != e.ID {
				t.Fatalf("Recent() = %+v, %v", recent, err)
			}
		})
	}
}
