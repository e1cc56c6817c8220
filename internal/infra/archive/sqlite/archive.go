// Package sqlite archives snapshots into a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"airportcore/internal/infra/archive"
	"airportcore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Archive appends every exported snapshot as one row per bucket.
type Archive struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open creates or opens the archive database at path.
func Open(path string) (*Archive, error) {
	if path == "" {
		path = "airportcore-archive.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshot_archive (
		snapshot_id TEXT NOT NULL,
		bucket TEXT NOT NULL,
		payload BLOB NOT NULL,
		taken_at TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, bucket)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive table: %w", err)
	}
	return &Archive{db: db, path: path}, nil
}

// Archive stores snap under id. Re-archiving an id is a no-op.
func (a *Archive) Archive(ctx context.Context, id string, snap domain.Snapshot) (retErr error) {
	buckets, err := archive.Buckets(snap)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	takenAt := snap.TakenAt.UTC().Format(time.RFC3339Nano)
	for _, b := range buckets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_archive(snapshot_id,bucket,payload,taken_at) VALUES(?,?,?,?) ON CONFLICT(snapshot_id,bucket) DO NOTHING`, id, b.Name, b.Payload, takenAt); err != nil {
			return fmt.Errorf("insert %s: %w", b.Name, err)
		}
	}
	return tx.Commit()
}

// Close releases the database handle.
func (a *Archive) Close() error { return a.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (a *Archive) DB() *sql.DB { return a.db }

// Path returns the configured database path.
func (a *Archive) Path() string { return a.path }
