// Package domain defines the airport entities, change and event types, and
// rule evaluation primitives used by airportcore.
package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and events.
const (
	// EntityPlane identifies an airplane record.
	EntityPlane EntityType = "plane"
	// EntityLocation identifies an airport location record.
	EntityLocation EntityType = "location"
	// EntityPassenger identifies a passenger record.
	EntityPassenger EntityType = "passenger"
	// EntityFlight identifies a flight record.
	EntityFlight EntityType = "flight"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Plane is an airplane available for scheduling. Planes are immutable after
// creation; the flights a plane has served are derived from the flight set.
type Plane struct {
	ID          string `json:"id"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	MaxCapacity int    `json:"max_capacity"`
	Airline     string `json:"airline"`
}

// Location is an airport identified by its three letter code.
type Location struct {
	AirportID string  `json:"airport_id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Passenger is a traveller that can be booked on flights.
type Passenger struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	BirthDate        time.Time `json:"birth_date"`
	CountryPhoneCode int       `json:"country_phone_code"`
	Phone            int64     `json:"phone"`
	Country          string    `json:"country"`
	FlightIDs        []string  `json:"flight_ids"`
}

// Key returns the passenger natural key in its string form.
func (p Passenger) Key() string { return strconv.FormatInt(p.ID, 10) }

// FullName joins first and last name.
func (p Passenger) FullName() string { return p.FirstName + " " + p.LastName }

// FormattedPhone renders the phone as "+<code> <number>".
func (p Passenger) FormattedPhone() string {
	return fmt.Sprintf("+%d %d", p.CountryPhoneCode, p.Phone)
}

// NumFlights reports how many flights the passenger is booked on.
func (p Passenger) NumFlights() int { return len(p.FlightIDs) }

// HasFlight reports whether the passenger is booked on the flight.
func (p Passenger) HasFlight(flightID string) bool {
	for _, id := range p.FlightIDs {
		if id == flightID {
			return true
		}
	}
	return false
}

// Age returns the number of whole years between the birth date and now.
func (p Passenger) Age(now time.Time) int {
	return WholeYears(p.BirthDate, now)
}

// WholeYears counts complete years elapsed from start to end, calendar aware.
func WholeYears(start, end time.Time) int {
	years := end.Year() - start.Year()
	if end.Month() < start.Month() || (end.Month() == start.Month() && end.Day() < start.Day()) {
		years--
	}
	return years
}

// Duration is an hours plus minutes span as captured by flight schedules.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// IsZero reports whether both components are zero.
func (d Duration) IsZero() bool { return d.Hours == 0 && d.Minutes == 0 }

// Range of timestamps the record formats can encode.
var (
	minTimestamp = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxTimestamp = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// maxShiftDays keeps whole-day steps far from int64 nanosecond overflow.
const maxShiftDays = 1 << 40

// Shift moves t by the span, stepping whole days separately from the
// remainder so large hour counts never overflow time.Duration. ok is false
// when the result falls outside years 1 to 9999.
func (d Duration) Shift(t time.Time) (time.Time, bool) {
	days := d.Hours/24 + d.Minutes/(24*60)
	if days > maxShiftDays || days < -maxShiftDays {
		return t, false
	}
	rest := time.Duration(d.Hours%24)*time.Hour + time.Duration(d.Minutes%(24*60))*time.Minute
	shifted := t.AddDate(0, 0, days).Add(rest)
	if shifted.Before(minTimestamp) || shifted.After(maxTimestamp) {
		return t, false
	}
	return shifted, true
}

func (d Duration) String() string { return fmt.Sprintf("%02d:%02d", d.Hours, d.Minutes) }

// Flight is a scheduled trip served by one plane between two airports with an
// optional intermediate scale.
type Flight struct {
	ID              string    `json:"id"`
	Plane           Plane     `json:"plane"`
	Departure       Location  `json:"departure"`
	Scale           *Location `json:"scale,omitempty"`
	Arrival         Location  `json:"arrival"`
	DepartureAt     time.Time `json:"departure_at"`
	ArrivalDuration Duration  `json:"arrival_duration"`
	ScaleDuration   Duration  `json:"scale_duration"`
	PassengerIDs    []int64   `json:"passenger_ids"`
}

// HasScale reports whether the flight stops at an intermediate location.
func (f Flight) HasScale() bool { return f.Scale != nil }

// NumPassengers reports the number of booked passengers.
func (f Flight) NumPassengers() int { return len(f.PassengerIDs) }

// IsFull reports whether the plane capacity has been reached.
func (f Flight) IsFull() bool { return f.NumPassengers() >= f.Plane.MaxCapacity }

// HasPassenger reports whether the passenger is booked on the flight.
func (f Flight) HasPassenger(passengerID int64) bool {
	for _, id := range f.PassengerIDs {
		if id == passengerID {
			return true
		}
	}
	return false
}

// ArrivalAt is departure plus the arrival duration plus the scale duration.
// It returns the departure when the sum cannot be represented; see
// ArrivalTime.
func (f Flight) ArrivalAt() time.Time {
	at, _ := f.ArrivalTime()
	return at
}

// ArrivalTime is ArrivalAt that also reports whether the arrival fits.
func (f Flight) ArrivalTime() (time.Time, bool) {
	at, ok := f.ArrivalDuration.Shift(f.DepartureAt)
	if !ok {
		return f.DepartureAt, false
	}
	if f.HasScale() {
		if at, ok = f.ScaleDuration.Shift(at); !ok {
			return f.DepartureAt, false
		}
	}
	return at, true
}

// Delay shifts the departure by a signed hours and minutes offset. It reports
// false, leaving the flight untouched, when the new departure cannot be
// represented.
func (f *Flight) Delay(hours, minutes int) bool {
	at, ok := Duration{Hours: hours, Minutes: minutes}.Shift(f.DepartureAt)
	if !ok {
		return false
	}
	f.DepartureAt = at
	return true
}

// ScaleAirportID returns the scale airport code or "-" when there is none.
func (f Flight) ScaleAirportID() string {
	if f.Scale == nil {
		return "-"
	}
	return f.Scale.AirportID
}

// Snapshot is a point-in-time, sorted copy of every repository.
type Snapshot struct {
	TakenAt    time.Time   `json:"taken_at"`
	Planes     []Plane     `json:"planes"`
	Locations  []Location  `json:"locations"`
	Passengers []Passenger `json:"passengers"`
	Flights    []Flight    `json:"flights"`
}

// SortPlanes orders planes by ID ascending.
func SortPlanes(planes []Plane) {
	sort.SliceStable(planes, func(i, j int) bool { return planes[i].ID < planes[j].ID })
}

// SortLocations orders locations by airport ID ascending.
func SortLocations(locations []Location) {
	sort.SliceStable(locations, func(i, j int) bool { return locations[i].AirportID < locations[j].AirportID })
}

// SortPassengers orders passengers by numeric ID ascending.
func SortPassengers(passengers []Passenger) {
	sort.SliceStable(passengers, func(i, j int) bool { return passengers[i].ID < passengers[j].ID })
}

// SortFlights orders flights by departure ascending, then by ID for ties.
func SortFlights(flights []Flight) {
	sort.SliceStable(flights, func(i, j int) bool {
		if !flights[i].DepartureAt.Equal(flights[j].DepartureAt) {
			return flights[i].DepartureAt.Before(flights[j].DepartureAt)
		}
		return strings.Compare(flights[i].ID, flights[j].ID) < 0
	})
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Key    string
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions. Records are never deleted.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// FirstBlocking returns the first blocking violation, if any.
func (r Result) FirstBlocking() (Violation, bool) {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return v, true
		}
	}
	return Violation{}, false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	if v, ok := e.Result.FirstBlocking(); ok {
		return v.Message
	}
	return "transaction blocked by rules"
}
