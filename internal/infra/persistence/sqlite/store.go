// Package sqlite persists widget snapshots to an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"globewidget/internal/infra/persistence/memory"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store mirrors an in-memory snapshot store into a single SQLite table, one
// row per widget section.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating when needed) the database at path and hydrates
// the in-memory mirror from it.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "globewidget.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		s.Hydrate(bucket, payload)
	}
	return rows.Err()
}

// Save writes sections for widgetID, removing buckets no longer present.
// The in-memory mirror only changes once the database commit succeeds.
func (s *Store) Save(ctx context.Context, widgetID string, sections map[string][]byte) (retErr error) {
	if widgetID == "" {
		return fmt.Errorf("sqlite store: empty widget id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, err := s.Store.Load(ctx, widgetID)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for section := range previous {
		if _, ok := sections[section]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM state WHERE bucket=?`, memory.BucketKey(widgetID, section)); err != nil {
			return fmt.Errorf("delete %s: %w", section, err)
		}
	}
	for section, payload := range sections {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, memory.BucketKey(widgetID, section), payload); err != nil {
			return fmt.Errorf("upsert %s: %w", section, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return s.Store.Save(ctx, widgetID, sections)
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
