package core

import (
	"context"
	"fmt"
	"io"

	"airportcore/internal/export"
	"airportcore/internal/loader"
	"airportcore/pkg/domain"
)

type datasetMessages struct {
	plural  string
	capital string
}

var datasets = map[domain.EntityType]datasetMessages{
	domain.EntityPlane:     {plural: "planes", capital: "Planes"},
	domain.EntityLocation:  {plural: "locations", capital: "Locations"},
	domain.EntityPassenger: {plural: "passengers", capital: "Passengers"},
	domain.EntityFlight:    {plural: "flights", capital: "Flights"},
}

func (s *Service) loader() *loader.Loader {
	return loader.New(loader.Targets{
		Planes:     s.planes,
		Locations:  s.locations,
		Passengers: s.passengers,
		Flights:    s.flights,
	}, s.logger)
}

func loadOperation(entity domain.EntityType) operation {
	m := datasets[entity]
	return operation{
		name:    string(entity) + ".load",
		status:  StatusOK,
		success: m.capital + " loaded successfully!",
		failure: "Could not load " + m.plural + ". Please try again later.",
	}
}

// LoadDataset bulk-inserts a JSON array of entity records read from r. The
// load report is the payload; records that cannot be inserted are skipped.
func (s *Service) LoadDataset(ctx context.Context, entity domain.EntityType, r io.Reader) Response {
	return s.run(ctx, loadOperation(entity), func(ctx context.Context) (any, error) {
		l := s.loader()
		var (
			report loader.Report
			err    error
		)
		switch entity {
		case domain.EntityPlane:
			report, err = l.LoadPlanes(ctx, r)
		case domain.EntityLocation:
			report, err = l.LoadLocations(ctx, r)
		case domain.EntityPassenger:
			report, err = l.LoadPassengers(ctx, r)
		case domain.EntityFlight:
			report, err = l.LoadFlights(ctx, r)
		default:
			err = fmt.Errorf("unknown entity %q", entity)
		}
		if err != nil {
			return nil, domain.Internal(string(entity)+".load", err)
		}
		return report, nil
	})
}

// LoadDatasetFromBlob reads the dataset stored under key in the configured
// blob store.
func (s *Service) LoadDatasetFromBlob(ctx context.Context, entity domain.EntityType, key string) Response {
	return s.run(ctx, loadOperation(entity), func(ctx context.Context) (any, error) {
		report, err := s.loader().LoadFromBlob(ctx, s.opts.blobs, entity, key)
		if err != nil {
			return nil, domain.Internal(string(entity)+".load", err)
		}
		return report, nil
	})
}

// LoadPlanesFromBlob loads planes from key.
func (s *Service) LoadPlanesFromBlob(ctx context.Context, key string) Response {
	return s.LoadDatasetFromBlob(ctx, domain.EntityPlane, key)
}

// LoadLocationsFromBlob loads locations from key.
func (s *Service) LoadLocationsFromBlob(ctx context.Context, key string) Response {
	return s.LoadDatasetFromBlob(ctx, domain.EntityLocation, key)
}

// LoadPassengersFromBlob loads passengers from key.
func (s *Service) LoadPassengersFromBlob(ctx context.Context, key string) Response {
	return s.LoadDatasetFromBlob(ctx, domain.EntityPassenger, key)
}

// LoadFlightsFromBlob loads flights from key. Planes and locations must be
// loaded first.
func (s *Service) LoadFlightsFromBlob(ctx context.Context, key string) Response {
	return s.LoadDatasetFromBlob(ctx, domain.EntityFlight, key)
}

// ExportReport writes the current state of every repository to the blob
// store, and to the archive when one is configured.
func (s *Service) ExportReport(ctx context.Context) Response {
	const op = "report.export"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusCreated,
		success: "Report exported successfully!",
		failure: "Could not export the report. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		if s.opts.blobs == nil {
			return nil, domain.Internal(op, fmt.Errorf("no blob store configured"))
		}
		var opts []export.Option
		if s.opts.archive != nil {
			opts = append(opts, export.WithArchive(s.opts.archive))
		}
		res, err := export.New(s.store, s.opts.blobs, opts...).Export(ctx)
		if err != nil {
			return nil, domain.Internal(op, err)
		}
		s.logger.Info("report.exported", "key", res.Key, "size_bytes", res.Size, "archived", res.Archived)
		return res, nil
	})
}

// ListReports returns the snapshot reports stored in the blob store, oldest
// first.
func (s *Service) ListReports(ctx context.Context) Response {
	const op = "report.list"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusOK,
		success: "Reports retrieved successfully!",
		failure: "Could not retrieve reports. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		if s.opts.blobs == nil {
			return nil, domain.Internal(op, fmt.Errorf("no blob store configured"))
		}
		infos, err := export.New(s.store, s.opts.blobs).Snapshots(ctx)
		if err != nil {
			return nil, domain.Internal(op, err)
		}
		return infos, nil
	})
}
