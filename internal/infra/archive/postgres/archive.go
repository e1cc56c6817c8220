// Package postgres archives snapshots into PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"airportcore/internal/infra/archive"
	"airportcore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/airportcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Archive appends every exported snapshot as one row per bucket.
type Archive struct {
	db *sql.DB
	mu sync.Mutex
}

// Open connects to dsn (defaultDSN when empty) and ensures the archive table.
func Open(ctx context.Context, dsn string) (*Archive, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	ddl := `CREATE TABLE IF NOT EXISTS snapshot_archive (
		snapshot_id TEXT NOT NULL,
		bucket TEXT NOT NULL,
		payload JSONB NOT NULL,
		taken_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (snapshot_id, bucket)
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure archive table: %w", err)
	}
	return &Archive{db: db}, nil
}

// Archive stores snap under id. Re-archiving an id is a no-op.
func (a *Archive) Archive(ctx context.Context, id string, snap domain.Snapshot) error {
	buckets, err := archive.Buckets(snap)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, b := range buckets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_archive(snapshot_id,bucket,payload,taken_at) VALUES($1,$2,$3,$4) ON CONFLICT(snapshot_id,bucket) DO NOTHING`, id, b.Name, b.Payload, snap.TakenAt.UTC()); err != nil {
			return fmt.Errorf("insert %s: %w", b.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close releases the database handle.
func (a *Archive) Close() error { return a.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (a *Archive) DB() *sql.DB { return a.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
