// Package sqlite persists save slots in a SQLite database. The payload
// is the opaque JSON produced by the save package; this store only
// owns slot naming and timestamps.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrSlotNotFound is returned when the named save slot does not exist.
var ErrSlotNotFound = errors.New("save slot not found")

const schema = `
CREATE TABLE IF NOT EXISTS save_slots (
    name       TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// Store is a SQLite-backed save-slot store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the save database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("save db path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open save db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping save db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure save schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put writes or replaces one save slot.
func (s *Store) Put(ctx context.Context, name string, payload []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("slot name is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO save_slots (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, payload, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write save slot %q: %w", name, err)
	}
	return nil
}

// Get reads one save slot's payload.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload FROM save_slots WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slot %q: %w", name, ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read save slot %q: %w", name, err)
	}
	return payload, nil
}

// Slot describes one stored save.
type Slot struct {
	Name      string
	UpdatedAt time.Time
}

// List returns all save slots, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Slot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, updated_at FROM save_slots ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list save slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var slot Slot
		var millis int64
		if err := rows.Scan(&slot.Name, &millis); err != nil {
			return nil, fmt.Errorf("scan save slot: %w", err)
		}
		slot.UpdatedAt = time.UnixMilli(millis).UTC()
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// Delete removes one save slot. Deleting a missing slot is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM save_slots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete save slot %q: %w", name, err)
	}
	return nil
}
