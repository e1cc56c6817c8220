package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"airportcore/internal/blob"
	"airportcore/internal/config"
	"airportcore/internal/core"
	"airportcore/internal/export"
	pgarchive "airportcore/internal/infra/archive/postgres"
	sqlitearchive "airportcore/internal/infra/archive/sqlite"
	"airportcore/internal/infra/logging"
	"airportcore/internal/infra/metrics"
	"airportcore/internal/loader"
	"airportcore/pkg/domain"
)

// datasetOrder lists datasets in dependency order: flights reference planes
// and locations.
var datasetOrder = []struct {
	entity domain.EntityType
	name   string
}{
	{domain.EntityPlane, "planes"},
	{domain.EntityLocation, "locations"},
	{domain.EntityPassenger, "passengers"},
	{domain.EntityFlight, "flights"},
}

// app is one process worth of wiring.
type app struct {
	cfg      config.Config
	svc      *core.Service
	logger   *logging.Logger
	registry *prometheus.Registry
	closers  []func() error
}

func newApp(ctx context.Context, envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(cfg.MetricsNamespace, registry)
	if err != nil {
		return nil, err
	}
	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, registry: registry}
	opts := []core.Option{
		core.WithLogger(logger),
		core.WithMetricsRecorder(recorder),
		core.WithBlobStore(blobs),
	}
	archive, err := a.openArchive(ctx)
	if err != nil {
		return nil, err
	}
	if archive != nil {
		opts = append(opts, core.WithArchive(archive))
	}
	a.svc = core.NewInMemoryService(nil, opts...)
	logger.Debug("airportctl.started", "blob_driver", string(blobs.Driver()), "archive_driver", string(cfg.Archive))
	return a, nil
}

func (a *app) openArchive(ctx context.Context) (export.Archive, error) {
	switch a.cfg.Archive {
	case config.ArchiveSQLite:
		archive, err := sqlitearchive.Open(a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite archive: %w", err)
		}
		a.closers = append(a.closers, archive.Close)
		return archive, nil
	case config.ArchivePostgres:
		archive, err := pgarchive.Open(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres archive: %w", err)
		}
		a.closers = append(a.closers, archive.Close)
		return archive, nil
	default:
		return nil, nil
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c()
	}
	_ = a.logger.Sync()
}

// loadAll loads the four datasets from the configured data directory.
func (a *app) loadAll(ctx context.Context, out io.Writer) error {
	for _, ds := range datasetOrder {
		key := a.cfg.DatasetKey(ds.name)
		resp := a.svc.LoadDatasetFromBlob(ctx, ds.entity, key)
		if !resp.IsSuccess() {
			return fmt.Errorf("%s: %s", key, resp.Message)
		}
		report := resp.Payload.(loader.Report)
		fmt.Fprintf(out, "%-10s inserted=%d skipped=%d\n", ds.name, report.Inserted, report.Skipped)
	}
	return nil
}

// writeMetrics prints every operation counter as "operation status value".
func (a *app) writeMetrics(out io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), "operations_total") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			lines = append(lines, fmt.Sprintf("%s %s %.0f", labels["operation"], labels["status"], m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
