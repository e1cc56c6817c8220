package core

import (
	"context"

	"airportcore/pkg/domain"
)

// Schedule messages shared by the rule and the flight input validation.
const (
	MessageZeroDuration     = "Flight duration must be greater than 00:00."
	MessageScaleNeedsTime   = "Scale time must be greater than 0 if a scale is specified."
	MessageScaleWithoutStop = "There cannot be scale time if there is no scale location."
	MessageDurationTooLarge = "The flight duration is too large."
	MessageDelayTooLarge    = "The delay is too large."
)

// NewFlightScheduleRule returns the rule checking the duration fields of
// created or updated flights. The arrival duration must be positive and the
// scale fields present or absent together; the arrival must still fit in
// the record formats.
func NewFlightScheduleRule() domain.Rule {
	return flightScheduleRule{}
}

type flightScheduleRule struct{}

func (flightScheduleRule) Name() string { return "flight_schedule" }

func (flightScheduleRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityFlight {
			continue
		}
		flight, ok := view.FindFlight(change.Key)
		if !ok {
			continue
		}
		msg := ""
		switch {
		case flight.ArrivalDuration.IsZero():
			msg = MessageZeroDuration
		case flight.HasScale() && flight.ScaleDuration.IsZero():
			msg = MessageScaleNeedsTime
		case !flight.HasScale() && !flight.ScaleDuration.IsZero():
			msg = MessageScaleWithoutStop
		case !arrivalFits(flight):
			msg = MessageDurationTooLarge
		default:
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "flight_schedule",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityFlight,
			EntityID: flight.ID,
		})
	}
	return res, nil
}

func arrivalFits(f domain.Flight) bool {
	_, ok := f.ArrivalTime()
	return ok
}
