// Package archive keeps fetched events in a local SQLite database so that
// later runs only need to page through what is new.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matthsc/gigaset-elements-api/internal/model"

	_ "modernc.org/sqlite"
)

// Store is an event archive backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and creates the schema.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		source_id TEXT NOT NULL DEFAULT '',
		payload JSON NOT NULL
	);
	CREATE INDEX IF NOT EXISTS events_ts ON events (ts);`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores events, skipping IDs already present, and returns how many
// were new. Events with an unparseable timestamp are rejected before
// anything is written.
func (s *Store) Put(ctx context.Context, events []model.Event) (int, error) {
	type row struct {
		ts      int64
		payload []byte
	}
	rows := make([]row, len(events))
	for i, e := range events {
		ts, err := e.Timestamp()
		if err != nil {
			return 0, fmt.Errorf("archive: event %s: %w", e.ID, err)
		}
		payload, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("archive: event %s: %w", e.ID, err)
		}
		rows[i] = row{ts: ts, payload: payload}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO events (id, ts, type, source_id, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	added := 0
	for i, e := range events {
		res, err := stmt.ExecContext(ctx, e.ID, rows[i].ts, e.Type, e.SourceID, string(rows[i].payload))
		if err != nil {
			return 0, fmt.Errorf("archive: insert event %s: %w", e.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Window returns stored events with from <= ts <= to, newest first.
// A limit of zero or less returns all of them.
func (s *Store) Window(ctx context.Context, from, to int64, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM events
		WHERE ts >= ? AND ts <= ?
		ORDER BY ts DESC, rowid ASC
		LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e model.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("archive: decode payload: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Latest returns the timestamp of the newest stored event. ok is false
// when the archive is empty.
func (s *Store) Latest(ctx context.Context) (ts int64, ok bool, err error) {
	var v sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT MAX(ts) FROM events`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v.Int64, v.Valid, nil
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
