package core

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"airportcore/pkg/domain"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *captureLogger) count(level, msgPrefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level && strings.HasPrefix(e.msg, msgPrefix) {
			n++
		}
	}
	return n
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithClock(ClockFunc(func() time.Time { return testNow }))}, opts...)
	return NewInMemoryService(nil, opts...)
}

func expectStatus(t *testing.T, resp Response, want Status) {
	t.Helper()
	if resp.Status != want {
		t.Fatalf("expected status %d, got %d (%q)", want, resp.Status, resp.Message)
	}
}

func expectRejected(t *testing.T, resp Response, message string) {
	t.Helper()
	expectStatus(t, resp, StatusInvalidInput)
	if resp.Message != message {
		t.Fatalf("expected message %q, got %q", message, resp.Message)
	}
}

func validPlane(id string, capacity string) PlaneInput {
	return PlaneInput{ID: id, Brand: "Airbus", Model: "A320", MaxCapacity: capacity, Airline: "Avianca"}
}

func validLocation(id string) LocationInput {
	return LocationInput{AirportID: id, Name: id + " International", City: "City " + id, Country: "Colombia", Latitude: "4.7", Longitude: "-74.1"}
}

func validPassenger(id string) PassengerInput {
	return PassengerInput{ID: id, FirstName: "Ana", LastName: "Lopez", Year: "1990", Month: "6", Day: "15", PhoneCode: "57", Phone: "3001234567", Country: "Colombia"}
}

func validFlight(id string) FlightInput {
	return FlightInput{
		ID:                  id,
		PlaneID:             "AB12345",
		DepartureLocationID: "BOG",
		ArrivalLocationID:   "MDE",
		Year:                "2030",
		Month:               "1",
		Day:                 "10",
		Hour:                "8",
		Minute:              "0",
		ArrivalHours:        "2",
		ArrivalMinutes:      "30",
		ScaleLocationID:     PlaceholderLocation,
		ScaleHours:          PlaceholderHour,
		ScaleMinutes:        PlaceholderMinute,
	}
}

// seedNetwork creates a plane of the given capacity and the BOG, MDE and CLO
// locations.
func seedNetwork(t *testing.T, svc *Service, capacity string) {
	t.Helper()
	ctx := context.Background()
	expectStatus(t, svc.CreatePlane(ctx, validPlane("AB12345", capacity)), StatusCreated)
	for _, id := range []string{"BOG", "MDE", "CLO"} {
		expectStatus(t, svc.CreateLocation(ctx, validLocation(id)), StatusCreated)
	}
}

func mustFlight(t *testing.T, svc *Service, id string) domain.Flight {
	t.Helper()
	f, ok := svc.Flights().Get(context.Background(), id)
	if !ok {
		t.Fatalf("flight %s not found", id)
	}
	return f
}

func mustPassenger(t *testing.T, svc *Service, id string) domain.Passenger {
	t.Helper()
	p, ok := svc.Passengers().Get(context.Background(), id)
	if !ok {
		t.Fatalf("passenger %s not found", id)
	}
	return p
}
