package core

import (
	"time"

	"airportcore/pkg/domain"
)

// NewDefaultRulesEngine builds a rules engine with the built-in airport policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	return newRulesEngine(func() time.Time { return time.Now().UTC() })
}

func newRulesEngine(now func() time.Time) *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewRecordFieldsRule(now))
	engine.Register(NewFlightCapacityRule())
	engine.Register(NewBookingSymmetryRule())
	engine.Register(NewFlightScheduleRule())
	return engine
}
