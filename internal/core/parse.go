package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"airportcore/pkg/domain"
)

// Placeholder values sent by selection widgets before the user picks a value.
const (
	PlaceholderYear     = "Year"
	PlaceholderMonth    = "Month"
	PlaceholderDay      = "Day"
	PlaceholderHour     = "Hour"
	PlaceholderMinute   = "Minute"
	PlaceholderLocation = "Location"
	PlaceholderUser     = "Select User"
)

const (
	flightYearWindow  = 5
	minBirthYear      = 1900
	maxPassengerIDLen = 15
	maxPhoneCodeLen   = 3
	maxPhoneLen       = 11
)

var (
	upperLetters = regexp.MustCompile(`^[A-Z]+$`)
	digits       = regexp.MustCompile(`^[0-9]+$`)
)

func requireText(op, value, field string) error {
	if strings.TrimSpace(value) == "" {
		return domain.InvalidInputf(op, "%s cannot be empty.", field)
	}
	return nil
}

func validatePlaneID(op, id string) error {
	if id == "" {
		return domain.InvalidInput(op, "ID cannot be empty.")
	}
	if len(id) != 7 {
		return domain.InvalidInput(op, "Invalid ID: must have exactly 7 characters (2 letters followed by 5 numbers).")
	}
	if !upperLetters.MatchString(id[:2]) {
		return domain.InvalidInput(op, "Invalid ID: the first 2 characters must be uppercase letters.")
	}
	if !digits.MatchString(id[2:]) {
		return domain.InvalidInput(op, "Invalid ID: the last 5 characters must be numbers.")
	}
	return nil
}

func validateLocationID(op, id string) error {
	if len(id) != 3 {
		return domain.InvalidInput(op, "The ID must have exactly 3 characters.")
	}
	if !upperLetters.MatchString(id) {
		return domain.InvalidInput(op, "The ID can only contain uppercase letters.")
	}
	return nil
}

func validateFlightID(op, id string) error {
	if len(id) != 6 {
		return domain.InvalidInput(op, "Flight ID must have exactly 6 characters (3 letters followed by 3 numbers).")
	}
	if !upperLetters.MatchString(id[:3]) {
		return domain.InvalidInput(op, "The first 3 characters of the ID must be uppercase letters.")
	}
	if !digits.MatchString(id[3:]) {
		return domain.InvalidInput(op, "The last 3 characters of the ID must be numbers.")
	}
	return nil
}

func parseCapacity(op, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.InvalidInput(op, "Max capacity cannot be empty.")
	}
	capacity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidInput(op, "Max capacity must be a number.")
	}
	if capacity <= 0 {
		return 0, domain.InvalidInput(op, "Max capacity must be a positive number.")
	}
	return capacity, nil
}

func parseCoordinate(op, raw, name string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, domain.InvalidInputf(op, "The %s must be a valid number.", name)
	}
	if err := checkCoordinate(op, v, name, lo, hi); err != nil {
		return 0, err
	}
	return v, nil
}

// checkCoordinate rejects non-finite values, which slip past range
// comparisons, and values outside [lo, hi].
func checkCoordinate(op string, v float64, name string, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.InvalidInputf(op, "The %s must be a valid number.", name)
	}
	if v < lo || v > hi {
		return domain.InvalidInputf(op, "The %s must be between %g and %g.", name, lo, hi)
	}
	return nil
}

// parseBounded parses a non-negative integer of at most maxLen digits.
// Messages are built from subject ("ID", "The phone code", ...).
func parseBounded(op, raw, subject, emptyMsg string, maxLen int) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.InvalidInput(op, emptyMsg)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.InvalidInputf(op, "%s must be numeric.", subject)
	}
	if v < 0 {
		return 0, domain.InvalidInputf(op, "%s must be positive.", subject)
	}
	if len(strconv.FormatInt(v, 10)) > maxLen {
		return 0, domain.InvalidInputf(op, "%s cannot exceed %d digits.", subject, maxLen)
	}
	return v, nil
}

func parsePassengerID(op, raw string) (int64, error) {
	return parseBounded(op, raw, "ID", "ID cannot be empty.", maxPassengerIDLen)
}

func parsePhoneCode(op, raw string) (int, error) {
	v, err := parseBounded(op, raw, "The phone code", "The phone country code cannot be empty.", maxPhoneCodeLen)
	return int(v), err
}

func parsePhone(op, raw string) (int64, error) {
	return parseBounded(op, raw, "The phone number", "The phone number cannot be empty.", maxPhoneLen)
}

// yearRange bounds a year field; the message is used when out of range.
type yearRange struct {
	min, max int
	message  string
}

func flightYears(now time.Time) yearRange {
	y := now.Year()
	return yearRange{min: y, max: y + flightYearWindow, message: "Please enter a valid year between " + strconv.Itoa(y) + " and " + strconv.Itoa(y+flightYearWindow) + "."}
}

func birthYears(now time.Time) yearRange {
	return yearRange{min: minBirthYear, max: now.Year(), message: "The year must be between 1900 and the current year."}
}

func parseYear(op, raw string, bounds yearRange) (int, error) {
	if raw == PlaceholderYear {
		return 0, domain.InvalidInput(op, "You must choose a year before continuing.")
	}
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.InvalidInput(op, "The year must be a number.")
	}
	if year < bounds.min || year > bounds.max {
		return 0, domain.InvalidInput(op, bounds.message)
	}
	return year, nil
}

func parseMonth(op, raw string) (int, error) {
	if raw == PlaceholderMonth {
		return 0, domain.InvalidInput(op, "You must choose a month before continuing.")
	}
	month, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.InvalidInput(op, "The month must be a number.")
	}
	if month < 1 || month > 12 {
		return 0, domain.InvalidInput(op, "The month must be between 1 and 12.")
	}
	return month, nil
}

func parseDay(op, raw string) (int, error) {
	if raw == PlaceholderDay {
		return 0, domain.InvalidInput(op, "You must choose a day before continuing.")
	}
	day, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.InvalidInput(op, "The day must be a number.")
	}
	return day, nil
}

func isTimePlaceholder(raw string) bool {
	return raw == PlaceholderHour || raw == PlaceholderMinute
}

// parseTimePart parses an hour or minute selector. part names the field in
// messages, e.g. "arrival hour".
func parseTimePart(op, raw, part string) (int, error) {
	if isTimePlaceholder(raw) {
		return 0, domain.InvalidInputf(op, "You must choose an %s before continuing.", part)
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.InvalidInputf(op, "The %s must be a number.", part)
	}
	if v < 0 {
		return 0, domain.InvalidInputf(op, "The %s cannot be negative.", part)
	}
	return v, nil
}

// calendarDate builds a UTC timestamp, reporting false when any component
// overflowed (e.g. February 30th or hour 24).
func calendarDate(year, month, day, hour, minute int) (time.Time, bool) {
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	ok := t.Year() == year && int(t.Month()) == month && t.Day() == day && t.Hour() == hour && t.Minute() == minute
	return t, ok
}

func parseBirthDate(op, year, month, day string, now time.Time) (time.Time, error) {
	y, err := parseYear(op, year, birthYears(now))
	if err != nil {
		return time.Time{}, err
	}
	m, err := parseMonth(op, month)
	if err != nil {
		return time.Time{}, err
	}
	d, err := parseDay(op, day)
	if err != nil {
		return time.Time{}, err
	}
	birth, ok := calendarDate(y, m, d, 0, 0)
	if !ok {
		return time.Time{}, domain.InvalidInput(op, "Invalid date. Please check the values.")
	}
	if birth.After(now) {
		return time.Time{}, domain.InvalidInput(op, "The birth date cannot be in the future.")
	}
	return birth, nil
}

func parseDeparture(op, year, month, day, hour, minute string, now time.Time) (time.Time, error) {
	y, err := parseYear(op, year, flightYears(now))
	if err != nil {
		return time.Time{}, err
	}
	m, err := parseMonth(op, month)
	if err != nil {
		return time.Time{}, err
	}
	d, err := parseDay(op, day)
	if err != nil {
		return time.Time{}, err
	}
	h, err := parseTimePart(op, hour, "hour")
	if err != nil {
		return time.Time{}, err
	}
	mi, err := parseTimePart(op, minute, "minute")
	if err != nil {
		return time.Time{}, err
	}
	departure, ok := calendarDate(y, m, d, h, mi)
	if !ok {
		return time.Time{}, domain.InvalidInput(op, "The departure date is invalid or does not exist.")
	}
	if !departure.After(now) {
		return time.Time{}, domain.InvalidInput(op, "The departure date cannot be in the past.")
	}
	return departure, nil
}
