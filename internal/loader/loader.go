// Package loader bulk-loads airport datasets encoded as JSON arrays, one
// array per entity type. Bad records are skipped and logged; only an
// unreadable source fails the whole load.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"airportcore/internal/blob"
	"airportcore/pkg/domain"
)

// Logger is the subset of the service logger used by the loader.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Repository is the keyed insert-and-lookup surface the loader writes to.
type Repository[T any] interface {
	Add(ctx context.Context, item T) bool
	Get(ctx context.Context, key string) (T, bool)
}

// Targets groups the repositories records are inserted into.
type Targets struct {
	Planes     Repository[domain.Plane]
	Locations  Repository[domain.Location]
	Passengers Repository[domain.Passenger]
	Flights    Repository[domain.Flight]
}

// Report summarises one load.
type Report struct {
	Entity   domain.EntityType `json:"entity"`
	Inserted int               `json:"inserted"`
	Skipped  int               `json:"skipped"`
	Warnings []string          `json:"warnings,omitempty"`
}

func (r *Report) skip(logger Logger, index int, key string, reason string) {
	r.Skipped++
	r.Warnings = append(r.Warnings, fmt.Sprintf("record %d (%s): %s", index, key, reason))
	logger.Warn("loader.record_skipped", "entity", string(r.Entity), "index", index, "key", key, "reason", reason)
}

// Loader decodes datasets and inserts them through the target repositories.
type Loader struct {
	targets Targets
	logger  Logger
}

// New constructs a loader. A nil logger discards output.
func New(targets Targets, logger Logger) *Loader {
	if logger == nil {
		logger = discard{}
	}
	return &Loader{targets: targets, logger: logger}
}

// LoadPlanes reads a JSON array of plane records from r.
func (l *Loader) LoadPlanes(ctx context.Context, r io.Reader) (Report, error) {
	return load(ctx, l, domain.EntityPlane, r, l.targets.Planes,
		func(rec PlaneRecord, _ *Report, _ int) (domain.Plane, string, bool) {
			p, err := rec.toDomain()
			if err != nil {
				return domain.Plane{}, rec.ID, false
			}
			return p, p.ID, true
		})
}

// LoadLocations reads a JSON array of location records from r.
func (l *Loader) LoadLocations(ctx context.Context, r io.Reader) (Report, error) {
	return load(ctx, l, domain.EntityLocation, r, l.targets.Locations,
		func(rec LocationRecord, _ *Report, _ int) (domain.Location, string, bool) {
			loc, err := rec.toDomain()
			if err != nil {
				return domain.Location{}, rec.AirportID, false
			}
			return loc, loc.AirportID, true
		})
}

// LoadPassengers reads a JSON array of passenger records from r.
func (l *Loader) LoadPassengers(ctx context.Context, r io.Reader) (Report, error) {
	return load(ctx, l, domain.EntityPassenger, r, l.targets.Passengers,
		func(rec PassengerRecord, report *Report, index int) (domain.Passenger, string, bool) {
			p, err := rec.toDomain()
			if err != nil {
				report.skip(l.logger, index, fmt.Sprint(rec.ID), err.Error())
				return domain.Passenger{}, "", false
			}
			return p, p.Key(), true
		})
}

// LoadFlights reads a JSON array of flight records from r. Planes and
// locations must already be loaded; flights referencing unknown ones are
// skipped.
func (l *Loader) LoadFlights(ctx context.Context, r io.Reader) (Report, error) {
	return load(ctx, l, domain.EntityFlight, r, l.targets.Flights,
		func(rec FlightRecord, report *Report, index int) (domain.Flight, string, bool) {
			f, reason := l.resolveFlight(ctx, rec)
			if reason != "" {
				report.skip(l.logger, index, rec.ID, reason)
				return domain.Flight{}, "", false
			}
			return f, f.ID, true
		})
}

func (l *Loader) resolveFlight(ctx context.Context, rec FlightRecord) (domain.Flight, string) {
	if rec.ID == "" {
		return domain.Flight{}, "missing id"
	}
	plane, ok := l.targets.Planes.Get(ctx, rec.Plane)
	if !ok {
		return domain.Flight{}, fmt.Sprintf("plane %s not found", rec.Plane)
	}
	departure, ok := l.targets.Locations.Get(ctx, rec.DepartureLocation)
	if !ok {
		return domain.Flight{}, fmt.Sprintf("departure location %s not found", rec.DepartureLocation)
	}
	arrival, ok := l.targets.Locations.Get(ctx, rec.ArrivalLocation)
	if !ok {
		return domain.Flight{}, fmt.Sprintf("arrival location %s not found", rec.ArrivalLocation)
	}
	departureAt, err := parseDateTime(rec.DepartureDate)
	if err != nil {
		return domain.Flight{}, fmt.Sprintf("departureDate: %v", err)
	}
	f := domain.Flight{
		ID:              rec.ID,
		Plane:           plane,
		Departure:       departure,
		Arrival:         arrival,
		DepartureAt:     departureAt,
		ArrivalDuration: domain.Duration{Hours: rec.HoursDurationArrival, Minutes: rec.MinutesDurationArrival},
		PassengerIDs:    []int64{},
	}
	if id := rec.scaleID(); id != "" {
		scale, ok := l.targets.Locations.Get(ctx, id)
		if !ok {
			return domain.Flight{}, fmt.Sprintf("scale location %s not found", id)
		}
		f.Scale = &scale
		f.ScaleDuration = domain.Duration{Hours: rec.HoursDurationScale, Minutes: rec.MinutesDurationScale}
	}
	return f, ""
}

// load decodes the array and inserts every mapped record. mapFn returns
// ok=false for records to skip; when it has not reported the skip itself,
// load records a generic reason.
func load[R, T any](ctx context.Context, l *Loader, entity domain.EntityType, r io.Reader, repo Repository[T], mapFn func(rec R, report *Report, index int) (T, string, bool)) (Report, error) {
	report := Report{Entity: entity}
	if repo == nil {
		return report, fmt.Errorf("loader: no %s repository configured", entity)
	}
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return report, fmt.Errorf("decode %s dataset: %w", entity, err)
	}
	for i, msg := range raw {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		var rec R
		if err := json.Unmarshal(msg, &rec); err != nil {
			report.skip(l.logger, i, "?", "malformed record: "+err.Error())
			continue
		}
		skippedBefore := report.Skipped
		item, key, ok := mapFn(rec, &report, i)
		if !ok {
			if report.Skipped == skippedBefore {
				report.skip(l.logger, i, key, "missing required fields")
			}
			continue
		}
		if _, exists := repo.Get(ctx, key); exists {
			report.skip(l.logger, i, key, "duplicate key")
			continue
		}
		if !repo.Add(ctx, item) {
			report.skip(l.logger, i, key, "rejected by repository")
			continue
		}
		report.Inserted++
	}
	l.logger.Info("loader.completed", "entity", string(entity), "inserted", report.Inserted, "skipped", report.Skipped)
	return report, nil
}

// LoadFromBlob opens key in store and dispatches to the loader for entity.
func (l *Loader) LoadFromBlob(ctx context.Context, store blob.Store, entity domain.EntityType, key string) (Report, error) {
	if store == nil {
		return Report{Entity: entity}, fmt.Errorf("loader: no blob store configured")
	}
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return Report{Entity: entity}, fmt.Errorf("open %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	switch entity {
	case domain.EntityPlane:
		return l.LoadPlanes(ctx, rc)
	case domain.EntityLocation:
		return l.LoadLocations(ctx, rc)
	case domain.EntityPassenger:
		return l.LoadPassengers(ctx, rc)
	case domain.EntityFlight:
		return l.LoadFlights(ctx, rc)
	default:
		return Report{Entity: entity}, fmt.Errorf("loader: unknown entity %q", entity)
	}
}

type discard struct{}

func (discard) Info(string, ...any) {}
func (discard) Warn(string, ...any) {}
