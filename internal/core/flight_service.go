package core

import (
	"context"
	"strconv"
	"strings"
	"time"

	"airportcore/pkg/domain"
)

// RowTimeLayout renders timestamps in listing rows.
const RowTimeLayout = "2006-01-02T15:04"

// FlightInput is the raw form of a new flight. Selector fields hold the
// placeholder values while unset; ScaleLocationID is PlaceholderLocation or
// empty when the flight has no scale.
type FlightInput struct {
	ID                  string
	PlaneID             string
	DepartureLocationID string
	ArrivalLocationID   string
	Year                string
	Month               string
	Day                 string
	Hour                string
	Minute              string
	ArrivalHours        string
	ArrivalMinutes      string
	ScaleLocationID     string
	ScaleHours          string
	ScaleMinutes        string
}

// FlightRow is the table form of a flight.
type FlightRow struct {
	ID         string `json:"id"`
	Departure  string `json:"departure"`
	Arrival    string `json:"arrival"`
	Scale      string `json:"scale"`
	DepartsAt  string `json:"departs_at"`
	ArrivesAt  string `json:"arrives_at"`
	PlaneID    string `json:"plane_id"`
	Passengers string `json:"passengers"`
}

func newFlightRow(f domain.Flight) FlightRow {
	return FlightRow{
		ID:         f.ID,
		Departure:  f.Departure.AirportID,
		Arrival:    f.Arrival.AirportID,
		Scale:      f.ScaleAirportID(),
		DepartsAt:  f.DepartureAt.Format(RowTimeLayout),
		ArrivesAt:  f.ArrivalAt().Format(RowTimeLayout),
		PlaneID:    f.Plane.ID,
		Passengers: strconv.Itoa(f.NumPassengers()),
	}
}

func hasScaleSelection(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && id != PlaceholderLocation
}

func unsetTimePart(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || isTimePlaceholder(raw)
}

// CreateFlight validates input and schedules the flight.
func (s *Service) CreateFlight(ctx context.Context, input FlightInput) Response {
	const op = "flight.create"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusCreated,
		success: "Flight added successfully!",
		failure: "An unexpected error occurred while adding the flight. Please try again.",
	}, func(ctx context.Context) (any, error) {
		if err := validateFlightID(op, input.ID); err != nil {
			return nil, err
		}
		now := s.clock.Now().UTC()
		var created domain.Flight
		err := s.transact(ctx, op, func(tx domain.Transaction) error {
			flight, err := buildFlight(op, tx, input, now)
			if err != nil {
				return err
			}
			created, err = tx.CreateFlight(flight)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("flight.created", "flight_id", created.ID, "plane_id", created.Plane.ID, "departure_at", created.DepartureAt)
		return created, nil
	})
}

func buildFlight(op string, view domain.TransactionView, input FlightInput, now time.Time) (domain.Flight, error) {
	if _, exists := view.FindFlight(input.ID); exists {
		return domain.Flight{}, domain.InvalidInput(op, "A flight with this ID already exists.")
	}
	plane, ok := view.FindPlane(input.PlaneID)
	if !ok {
		return domain.Flight{}, domain.InvalidInput(op, "The plane does not exist.")
	}
	departure, err := requireLocation(op, view, input.DepartureLocationID, "departure")
	if err != nil {
		return domain.Flight{}, err
	}
	arrival, err := requireLocation(op, view, input.ArrivalLocationID, "arrival")
	if err != nil {
		return domain.Flight{}, err
	}
	departureAt, err := parseDeparture(op, input.Year, input.Month, input.Day, input.Hour, input.Minute, now)
	if err != nil {
		return domain.Flight{}, err
	}
	arrivalDuration, err := parseDuration(op, input.ArrivalHours, input.ArrivalMinutes, "arrival")
	if err != nil {
		return domain.Flight{}, err
	}
	if arrivalDuration.IsZero() {
		return domain.Flight{}, domain.InvalidInput(op, MessageZeroDuration)
	}

	flight := domain.Flight{
		ID:              input.ID,
		Plane:           plane,
		Departure:       departure,
		Arrival:         arrival,
		DepartureAt:     departureAt,
		ArrivalDuration: arrivalDuration,
		PassengerIDs:    []int64{},
	}
	if !hasScaleSelection(input.ScaleLocationID) {
		if !unsetTimePart(input.ScaleHours) || !unsetTimePart(input.ScaleMinutes) {
			return domain.Flight{}, domain.InvalidInput(op, MessageScaleWithoutStop)
		}
		if _, ok := flight.ArrivalTime(); !ok {
			return domain.Flight{}, domain.InvalidInput(op, MessageDurationTooLarge)
		}
		return flight, nil
	}
	scale, err := requireLocation(op, view, input.ScaleLocationID, "scale")
	if err != nil {
		return domain.Flight{}, err
	}
	scaleDuration, err := parseDuration(op, input.ScaleHours, input.ScaleMinutes, "scale")
	if err != nil {
		return domain.Flight{}, err
	}
	if scaleDuration.IsZero() {
		return domain.Flight{}, domain.InvalidInput(op, MessageScaleNeedsTime)
	}
	flight.Scale = &scale
	flight.ScaleDuration = scaleDuration
	if _, ok := flight.ArrivalTime(); !ok {
		return domain.Flight{}, domain.InvalidInput(op, MessageDurationTooLarge)
	}
	return flight, nil
}

func requireLocation(op string, view domain.TransactionView, id, role string) (domain.Location, error) {
	loc, ok := view.FindLocation(id)
	if !ok {
		return domain.Location{}, domain.InvalidInputf(op, "The %s location does not exist.", role)
	}
	return loc, nil
}

// parseDuration reads an hours and minutes pair; prefix names the parts in
// messages ("arrival" gives "arrival hour" and "arrival minute").
func parseDuration(op, hours, minutes, prefix string) (domain.Duration, error) {
	h, err := parseTimePart(op, hours, prefix+" hour")
	if err != nil {
		return domain.Duration{}, err
	}
	m, err := parseTimePart(op, minutes, prefix+" minute")
	if err != nil {
		return domain.Duration{}, err
	}
	return domain.Duration{Hours: h, Minutes: m}, nil
}

// DelayFlight pushes the flight's departure back by hours and minutes.
func (s *Service) DelayFlight(ctx context.Context, flightID, hours, minutes string) Response {
	const op = "flight.delay"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusOK,
		success: "Flight delayed successfully!",
		failure: "An unexpected error occurred while delaying the flight. Please try again.",
	}, func(ctx context.Context) (any, error) {
		var delayed domain.Flight
		err := s.transact(ctx, op, func(tx domain.Transaction) error {
			if _, ok := tx.FindFlight(flightID); !ok {
				return domain.InvalidInput(op, "The flight does not exist.")
			}
			h, err := parseTimePart(op, hours, "hour")
			if err != nil {
				return err
			}
			m, err := parseTimePart(op, minutes, "minute")
			if err != nil {
				return err
			}
			delayed, err = tx.UpdateFlight(flightID, func(f *domain.Flight) error {
				if !f.Delay(h, m) {
					return domain.InvalidInput(op, MessageDelayTooLarge)
				}
				return nil
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("flight.delayed", "flight_id", delayed.ID, "departure_at", delayed.DepartureAt)
		return delayed, nil
	})
}

// ListFlights returns every flight ordered by departure.
func (s *Service) ListFlights(ctx context.Context) Response {
	return s.run(ctx, operation{
		name:    "flight.list",
		status:  StatusOK,
		success: "Flights retrieved successfully!",
		failure: "Could not retrieve flights. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		return s.flights.List(ctx), nil
	})
}

// FlightRows returns the table form of every flight ordered by departure.
func (s *Service) FlightRows(ctx context.Context) Response {
	return s.run(ctx, operation{
		name:    "flight.rows",
		status:  StatusOK,
		success: "Flights retrieved successfully!",
		failure: "Could not retrieve formatted flights. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		flights := s.flights.List(ctx)
		rows := make([]FlightRow, 0, len(flights))
		for _, f := range flights {
			rows = append(rows, newFlightRow(f))
		}
		return rows, nil
	})
}
