package core

import (
	"context"
	"fmt"
	"strconv"

	"airportcore/pkg/domain"
)

// NewBookingSymmetryRule returns the rule requiring every booking to be
// recorded on both the passenger and the flight.
func NewBookingSymmetryRule() domain.Rule {
	return bookingSymmetryRule{}
}

type bookingSymmetryRule struct{}

func (bookingSymmetryRule) Name() string { return "booking_symmetry" }

func (r bookingSymmetryRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, passenger := range view.ListPassengers() {
		for _, flightID := range passenger.FlightIDs {
			flight, ok := view.FindFlight(flightID)
			if ok && flight.HasPassenger(passenger.ID) {
				continue
			}
			res.Violations = append(res.Violations, r.violation(domain.EntityPassenger, passenger.Key(),
				fmt.Sprintf("passenger %d lists flight %s without a matching booking", passenger.ID, flightID)))
		}
	}
	for _, flight := range view.ListFlights() {
		for _, passengerID := range flight.PassengerIDs {
			passenger, ok := view.FindPassenger(passengerID)
			if ok && passenger.HasFlight(flight.ID) {
				continue
			}
			res.Violations = append(res.Violations, r.violation(domain.EntityFlight, flight.ID,
				fmt.Sprintf("flight %s lists passenger %s without a matching booking", flight.ID, strconv.FormatInt(passengerID, 10))))
		}
	}
	return res, nil
}

func (bookingSymmetryRule) violation(entity domain.EntityType, id, msg string) domain.Violation {
	return domain.Violation{
		Rule:     "booking_symmetry",
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   entity,
		EntityID: id,
	}
}
