// Package storage persists the movement journal in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"bankist/internal/journal"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteJournal implements journal.Recorder and journal.Lister. Amounts are
// stored as decimal text so they round-trip exactly. Recording the same
// event id twice is a no-op.
type SQLiteJournal struct {
	db            *sql.DB
	schemaVersion uint
}

func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("SQLite journal ready", "path", dbPath, "schema_version", version)
	return &SQLiteJournal{db: db, schemaVersion: version}, nil
}

func (j *SQLiteJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *SQLiteJournal) SchemaVersion() uint {
	return j.schemaVersion
}

// Ping reports whether the database is reachable.
func (j *SQLiteJournal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Record writes all events in one transaction.
func (j *SQLiteJournal) Record(ctx context.Context, events ...journal.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_events (event_id, kind, account_id, user_name, amount, counterparty, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.ID,
			string(e.Kind),
			e.AccountID,
			e.UserName,
			e.Amount.String(),
			e.Counterparty,
			e.OccurredAt.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit events: %w", err)
	}

	slog.DebugContext(ctx, "Journal events saved to SQLite", "count", len(events))
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]journal.Event, error) {
	query := `
		SELECT event_id, kind, account_id, user_name, amount, counterparty, occurred_at
		FROM journal_events
		ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return j.query(ctx, query, args...)
}

func (j *SQLiteJournal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (j *SQLiteJournal) query(ctx context.Context, query string, args ...any) ([]journal.Event, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []journal.Event
	for rows.Next() {
		var (
			e                  journal.Event
			kind, amount, when string
		)
		if err := rows.Scan(&e.ID, &kind, &e.AccountID, &e.UserName, &amount, &e.Counterparty, &when); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = journal.Kind(kind)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount of event %s: %w", e.ID, err)
		}
		if e.OccurredAt, err = time.Parse(timeLayout, when); err != nil {
			return nil, fmt.Errorf("parse time of event %s: %w", e.ID, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
