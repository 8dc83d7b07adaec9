/*
Package sqlite provides a SQLite-backed inventory.StateStore.

PURPOSE:
  Persists the two ledger artifacts between sessions. The ledger is small
  and always replayed in full, so it is stored as two JSON documents in a
  key-value table rather than as normalized rows.

KEY TABLE:
  ledger_state(key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TEXT NOT NULL)

  key = "transactions"    -> JSON array of records
  key = "opening_stocks"  -> JSON object of product -> number

ATOMICITY:
  SaveState writes both rows in a single SQL transaction. A crash between
  the two writes cannot leave records and opening stocks out of sync.

MISSING VS CORRUPT:
  A missing row loads as the empty artifact. A row that does not decode
  returns an error wrapping inventory.ErrCorruptState.

CONCURRENCY:
  Uses sync.RWMutex around every statement. The Book already serializes
  mutations; the lock keeps the CLI and tests safe when sharing a Store.

WAL MODE:
  Opened with WAL (Write-Ahead Logging): readers don't block the writer.

USAGE:
  st, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  book, err := inventory.OpenBook(ctx, st)

SEE ALSO:
  - inventory/store.go: StateStore
  - inventory/encode.go: JSON form of the artifacts
  - inventory/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/inventory/store"
)

// Store implements inventory.StateStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ledger_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STATE STORE (inventory.StateStore interface)
// =============================================================================

func (s *Store) LoadRecords(ctx context.Context) ([]inventory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok, err := s.get(ctx, store.KeyRecords)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []inventory.Record{}, nil
	}
	return inventory.DecodeRecords(data)
}

func (s *Store) LoadOpeningStocks(ctx context.Context) (inventory.OpeningStocks, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok, err := s.get(ctx, store.KeyOpeningStocks)
	if err != nil {
		return nil, err
	}
	if !ok {
		return inventory.OpeningStocks{}, nil
	}
	return inventory.DecodeOpeningStocks(data)
}

// SaveState rewrites both artifacts atomically.
func (s *Store) SaveState(ctx context.Context, state inventory.State) error {
	records, err := inventory.EncodeRecords(state.Records)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	opening, err := inventory.EncodeOpeningStocks(state.OpeningStocks)
	if err != nil {
		return fmt.Errorf("encoding opening stocks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	now := time.Now().UTC()
	if err := put(ctx, sqlTx, store.KeyRecords, records, now); err != nil {
		return err
	}
	if err := put(ctx, sqlTx, store.KeyOpeningStocks, opening, now); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Reset deletes both artifacts.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM ledger_state")
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// UpdatedAt returns when the ledger was last saved. The zero time means it
// was never saved (or was reset).
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM ledger_state").Scan(&raw)
	if err != nil {
		return time.Time{}, err
	}
	if !raw.Valid {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, raw.String)
}

// PutRaw stores an artifact verbatim, bypassing encoding.
func (s *Store) PutRaw(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return put(ctx, s.db, key, data, time.Now().UTC())
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM ledger_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func put(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, key string, value []byte, at time.Time) error {
	query := `
		INSERT INTO ledger_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, string(value), at.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
