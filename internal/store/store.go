// Package store keeps a local log of every decision the fleet produced and
// what became of it, for post-hoc inspection. The ledger stays the source
// of truth for money; this is observability only.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id           TEXT PRIMARY KEY,
	captain      TEXT NOT NULL,
	action       TEXT NOT NULL,
	amount       TEXT NOT NULL DEFAULT '',
	challenge_id INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	detail       TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_captain ON decisions(captain, created_at);
`

// Fixed-width UTC timestamps so the created_at ORDER BY compares correctly
// as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

type Row struct {
	ID          string
	Captain     string
	Action      string
	Amount      string
	ChallengeID uint64
	Status      string
	Detail      string
	Reason      string
	CreatedAt   time.Time
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one decision outcome. A missing ID gets a fresh uuid.
func (s *Store) Record(ctx context.Context, row Row) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, captain, action, amount, challenge_id, status, detail, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Captain, row.Action, row.Amount, row.ChallengeID,
		row.Status, row.Detail, row.Reason, row.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Recent returns the newest decisions for one captain, newest first.
func (s *Store) Recent(ctx context.Context, captain string, limit int) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, captain, action, amount, challenge_id, status, detail, reason, created_at
		 FROM decisions WHERE captain = ? ORDER BY created_at DESC LIMIT ?`,
		captain, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var row Row
		var createdAt string
		if err := rows.Scan(&row.ID, &row.Captain, &row.Action, &row.Amount,
			&row.ChallengeID, &row.Status, &row.Detail, &row.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		row.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, row)
	}
	return out, rows.Err()
}
