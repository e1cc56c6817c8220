package core

import (
	"context"
	"strconv"

	"airportcore/pkg/domain"
)

// PlaneInput is the raw, untrusted form of a new plane.
type PlaneInput struct {
	ID          string
	Brand       string
	Model       string
	MaxCapacity string
	Airline     string
}

// PlaneRow is the table form of a plane.
type PlaneRow struct {
	ID          string `json:"id"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	MaxCapacity string `json:"max_capacity"`
	Airline     string `json:"airline"`
	Flights     string `json:"flights"`
}

// CreatePlane validates input and inserts the plane. The created plane is the
// payload of a successful response.
func (s *Service) CreatePlane(ctx context.Context, input PlaneInput) Response {
	const op = "plane.create"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusCreated,
		success: "Plane added successfully!",
		failure: "An unexpected error occurred while adding the plane. Please try again.",
	}, func(ctx context.Context) (any, error) {
		if err := validatePlaneID(op, input.ID); err != nil {
			return nil, err
		}
		var created domain.Plane
		err := s.transact(ctx, op, func(tx domain.Transaction) error {
			if _, exists := tx.FindPlane(input.ID); exists {
				return domain.InvalidInput(op, "A plane with this ID already exists.")
			}
			for _, field := range []struct{ value, name string }{
				{input.Brand, "The brand"},
				{input.Model, "The model"},
				{input.Airline, "The airline"},
			} {
				if err := requireText(op, field.value, field.name); err != nil {
					return err
				}
			}
			capacity, err := parseCapacity(op, input.MaxCapacity)
			if err != nil {
				return err
			}
			created, err = tx.CreatePlane(domain.Plane{
				ID:          input.ID,
				Brand:       input.Brand,
				Model:       input.Model,
				MaxCapacity: capacity,
				Airline:     input.Airline,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("plane.created", "plane_id", created.ID, "max_capacity", created.MaxCapacity)
		return created, nil
	})
}

// ListPlanes returns every plane ordered by ID.
func (s *Service) ListPlanes(ctx context.Context) Response {
	return s.run(ctx, operation{
		name:    "plane.list",
		status:  StatusOK,
		success: "Planes retrieved successfully!",
		failure: "Could not retrieve planes. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		return s.planes.List(ctx), nil
	})
}

// PlaneRows returns the table form of every plane, including the number of
// flights each one serves.
func (s *Service) PlaneRows(ctx context.Context) Response {
	return s.run(ctx, operation{
		name:    "plane.rows",
		status:  StatusOK,
		success: "Planes retrieved successfully!",
		failure: "Could not retrieve formatted planes. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		var rows []PlaneRow
		err := s.view(ctx, func(v domain.TransactionView) error {
			served := make(map[string]int)
			for _, f := range v.ListFlights() {
				served[f.Plane.ID]++
			}
			planes := v.ListPlanes()
			rows = make([]PlaneRow, 0, len(planes))
			for _, p := range planes {
				rows = append(rows, PlaneRow{
					ID:          p.ID,
					Brand:       p.Brand,
					Model:       p.Model,
					MaxCapacity: strconv.Itoa(p.MaxCapacity),
					Airline:     p.Airline,
					Flights:     strconv.Itoa(served[p.ID]),
				})
			}
			return nil
		})
		return rows, err
	})
}

// FlightsByPlane returns the flights served by the plane, ordered by
// departure.
func (s *Service) FlightsByPlane(ctx context.Context, planeID string) Response {
	const op = "plane.flights"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusOK,
		success: "Plane flights retrieved successfully!",
		failure: "Could not retrieve plane flights. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		var flights []domain.Flight
		err := s.view(ctx, func(v domain.TransactionView) error {
			if _, ok := v.FindPlane(planeID); !ok {
				return domain.InvalidInput(op, "The plane does not exist.")
			}
			flights = []domain.Flight{}
			for _, f := range v.ListFlights() {
				if f.Plane.ID == planeID {
					flights = append(flights, f)
				}
			}
			return nil
		})
		return flights, err
	})
}
