// Package export writes point-in-time snapshots of every repository to a
// blob store and, optionally, to a write-only archive.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"airportcore/internal/blob"
	"airportcore/pkg/domain"
)

// DefaultPrefix is the blob key prefix used for snapshot reports.
const DefaultPrefix = "reports/"

// Source produces snapshots; the memory store satisfies it.
type Source interface {
	ExportState() domain.Snapshot
}

// Archive is an append-only sink keyed by snapshot id.
type Archive interface {
	Archive(ctx context.Context, id string, snap domain.Snapshot) error
}

// Result describes a completed export.
type Result struct {
	Key      string `json:"key"`
	Size     int64  `json:"size_bytes"`
	Archived bool   `json:"archived"`
	Counts   Counts `json:"counts"`
}

// Counts summarises the exported collections.
type Counts struct {
	Planes     int `json:"planes"`
	Locations  int `json:"locations"`
	Passengers int `json:"passengers"`
	Flights    int `json:"flights"`
}

// Exporter serialises snapshots from a Source.
type Exporter struct {
	source  Source
	blobs   blob.Store
	archive Archive
	prefix  string
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithArchive also appends each snapshot to a.
func WithArchive(a Archive) Option {
	return func(e *Exporter) { e.archive = a }
}

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(e *Exporter) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		e.prefix = prefix
	}
}

// New constructs an exporter writing to blobs.
func New(source Source, blobs blob.Store, opts ...Option) *Exporter {
	e := &Exporter{source: source, blobs: blobs, prefix: DefaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// SnapshotID derives the stable identifier of a snapshot from its timestamp.
func SnapshotID(snap domain.Snapshot) string {
	return "snapshot-" + snap.TakenAt.UTC().Format("20060102T150405.000000000Z")
}

// Snapshots lists the reports previously written under the exporter's
// prefix, oldest first.
func (e *Exporter) Snapshots(ctx context.Context) ([]blob.Info, error) {
	if e.blobs == nil {
		return nil, fmt.Errorf("export: blob store is required")
	}
	infos, err := e.blobs.List(ctx, e.prefix+"snapshot-")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", e.prefix, err)
	}
	return infos, nil
}

// Export captures one snapshot and writes it as indented JSON to
// <prefix>snapshot-<timestamp>.json.
func (e *Exporter) Export(ctx context.Context) (Result, error) {
	if e.source == nil || e.blobs == nil {
		return Result{}, fmt.Errorf("export: source and blob store are required")
	}
	snap := e.source.ExportState()
	id := SnapshotID(snap)
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key := e.prefix + id + ".json"
	info, err := e.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"snapshot_id": id},
	})
	if err != nil {
		return Result{}, fmt.Errorf("write %s: %w", key, err)
	}
	res := Result{
		Key:  info.Key,
		Size: info.Size,
		Counts: Counts{
			Planes:     len(snap.Planes),
			Locations:  len(snap.Locations),
			Passengers: len(snap.Passengers),
			Flights:    len(snap.Flights),
		},
	}
	if e.archive != nil {
		if err := e.archive.Archive(ctx, id, snap); err != nil {
			return res, fmt.Errorf("archive %s: %w", id, err)
		}
		res.Archived = true
	}
	return res, nil
}
