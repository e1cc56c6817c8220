package core

import (
	"context"
	"strconv"
	"time"

	"airportcore/pkg/domain"
)

const ruleRecordFields = "record_fields"

// NewRecordFieldsRule returns the rule holding every created or updated
// record to the same grammar and range checks the input parsers apply.
// Writes that bypass the parsers, such as bulk loads, are blocked with the
// parser's message. now bounds birth dates.
func NewRecordFieldsRule(now func() time.Time) domain.Rule {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return recordFieldsRule{now: now}
}

type recordFieldsRule struct {
	now func() time.Time
}

func (recordFieldsRule) Name() string { return ruleRecordFields }

func (r recordFieldsRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	seen := make(map[domain.EntityType]map[string]bool)
	for _, change := range changes {
		if seen[change.Entity][change.Key] {
			continue
		}
		if seen[change.Entity] == nil {
			seen[change.Entity] = make(map[string]bool)
		}
		seen[change.Entity][change.Key] = true

		if err := r.check(view, change); err != nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     ruleRecordFields,
				Severity: domain.SeverityBlock,
				Message:  domain.UserMessage(err),
				Entity:   change.Entity,
				EntityID: change.Key,
			})
		}
	}
	return res, nil
}

func (r recordFieldsRule) check(view domain.RuleView, change domain.Change) error {
	const op = ruleRecordFields
	switch change.Entity {
	case domain.EntityPlane:
		if p, ok := view.FindPlane(change.Key); ok {
			return checkPlane(op, p)
		}
	case domain.EntityLocation:
		if l, ok := view.FindLocation(change.Key); ok {
			return checkLocation(op, l)
		}
	case domain.EntityPassenger:
		id, err := strconv.ParseInt(change.Key, 10, 64)
		if err != nil {
			return domain.InvalidInput(op, "ID must be numeric.")
		}
		if p, ok := view.FindPassenger(id); ok {
			return checkPassenger(op, p, r.now())
		}
	case domain.EntityFlight:
		if f, ok := view.FindFlight(change.Key); ok {
			return validateFlightID(op, f.ID)
		}
	}
	return nil
}

func checkPlane(op string, p domain.Plane) error {
	if err := validatePlaneID(op, p.ID); err != nil {
		return err
	}
	for _, field := range []struct{ value, name string }{
		{p.Brand, "The brand"},
		{p.Model, "The model"},
		{p.Airline, "The airline"},
	} {
		if err := requireText(op, field.value, field.name); err != nil {
			return err
		}
	}
	if p.MaxCapacity <= 0 {
		return domain.InvalidInput(op, "Max capacity must be a positive number.")
	}
	return nil
}

func checkLocation(op string, l domain.Location) error {
	if err := validateLocationID(op, l.AirportID); err != nil {
		return err
	}
	for _, field := range []struct{ value, name string }{
		{l.Name, "The name"},
		{l.City, "The city"},
		{l.Country, "The country"},
	} {
		if err := requireText(op, field.value, field.name); err != nil {
			return err
		}
	}
	if err := checkCoordinate(op, l.Longitude, "longitude", -180, 180); err != nil {
		return err
	}
	return checkCoordinate(op, l.Latitude, "latitude", -90, 90)
}

func checkPassenger(op string, p domain.Passenger, now time.Time) error {
	if _, err := parsePassengerID(op, strconv.FormatInt(p.ID, 10)); err != nil {
		return err
	}
	for _, field := range []struct{ value, name string }{
		{p.FirstName, "The first name"},
		{p.LastName, "The last name"},
		{p.Country, "The country"},
	} {
		if err := requireText(op, field.value, field.name); err != nil {
			return err
		}
	}
	if _, err := parsePhoneCode(op, strconv.Itoa(p.CountryPhoneCode)); err != nil {
		return err
	}
	if _, err := parsePhone(op, strconv.FormatInt(p.Phone, 10)); err != nil {
		return err
	}
	birth := p.BirthDate.UTC()
	if birth.Year() < minBirthYear || birth.Year() > now.Year() {
		return domain.InvalidInput(op, birthYears(now).message)
	}
	if birth.After(now) {
		return domain.InvalidInput(op, "The birth date cannot be in the future.")
	}
	return nil
}
