package cache

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists cached validation results to SQLite, so probe
// results survive process restarts. It is suitable for single-process
// production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite cache store.
// The path should be a file path (e.g., "./validation-cache.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS validation_results (
			key TEXT NOT NULL PRIMARY KEY,
			expires_at TEXT,
			data BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	var expiresAt sql.NullString
	err := s.db.QueryRow(`
		SELECT data, expires_at FROM validation_results
		WHERE key = ?
	`, key).Scan(&data, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cache entry: %w", err)
	}

	if expiresAt.Valid {
		deadline, perr := time.Parse(time.RFC3339Nano, expiresAt.String)
		if perr != nil || time.Now().After(deadline) {
			return nil, ErrNotFound
		}
	}
	return data, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.Exec(`
		INSERT INTO validation_results (key, expires_at, data)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			expires_at = excluded.expires_at,
			data = excluded.data
	`, key, expiresAt, data)

	if err != nil {
		return fmt.Errorf("save cache entry: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`DELETE FROM validation_results WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Purge implements Store.
func (s *SQLiteStore) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM validation_results
		WHERE expires_at IS NOT NULL AND expires_at < ?
	`, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("purge cache entries: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
