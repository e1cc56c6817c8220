package core

import (
	"context"

	"airportcore/pkg/domain"
)

// MessageFlightFull is reported when a booking would exceed plane capacity.
const MessageFlightFull = "The flight is full. No more passengers can be added."

// NewFlightCapacityRule returns the in-transaction rule keeping every flight
// within its plane's maximum capacity.
func NewFlightCapacityRule() domain.Rule {
	return flightCapacityRule{}
}

type flightCapacityRule struct{}

func (flightCapacityRule) Name() string { return "flight_capacity" }

func (flightCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, flight := range view.ListFlights() {
		if flight.NumPassengers() <= flight.Plane.MaxCapacity {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "flight_capacity",
			Severity: domain.SeverityBlock,
			Message:  MessageFlightFull,
			Entity:   domain.EntityFlight,
			EntityID: flight.ID,
		})
	}
	return res, nil
}
