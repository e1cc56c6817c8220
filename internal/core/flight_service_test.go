package core

import (
	"context"
	"testing"
	"time"

	"airportcore/pkg/domain"
)

func TestCreateFlightAndArrival(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")

	resp := svc.CreateFlight(context.Background(), validFlight("AVA123"))
	expectStatus(t, resp, StatusCreated)
	if resp.Message != "Flight added successfully!" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	flight := mustFlight(t, svc, "AVA123")
	want := time.Date(2030, time.January, 10, 10, 30, 0, 0, time.UTC)
	if !flight.ArrivalAt().Equal(want) {
		t.Fatalf("expected arrival %v, got %v", want, flight.ArrivalAt())
	}
	if flight.HasScale() || flight.NumPassengers() != 0 {
		t.Fatalf("unexpected flight state %+v", flight)
	}
}

func TestCreateFlightValidation(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")
	ctx := context.Background()
	expectStatus(t, svc.CreateFlight(ctx, validFlight("AVA123")), StatusCreated)

	cases := []struct {
		name   string
		mutate func(*FlightInput)
		want   string
	}{
		{"bad id", func(in *FlightInput) { in.ID = "AV1234" }, "The first 3 characters of the ID must be uppercase letters."},
		{"duplicate", func(*FlightInput) {}, "A flight with this ID already exists."},
		{"unknown plane", func(in *FlightInput) { in.ID = "AVA124"; in.PlaneID = "ZZ99999" }, "The plane does not exist."},
		{"unknown departure", func(in *FlightInput) { in.ID = "AVA124"; in.DepartureLocationID = "XXX" }, "The departure location does not exist."},
		{"unknown arrival", func(in *FlightInput) { in.ID = "AVA124"; in.ArrivalLocationID = "XXX" }, "The arrival location does not exist."},
		{"year placeholder", func(in *FlightInput) { in.ID = "AVA124"; in.Year = PlaceholderYear }, "You must choose a year before continuing."},
		{"month placeholder", func(in *FlightInput) { in.ID = "AVA124"; in.Month = PlaceholderMonth }, "You must choose a month before continuing."},
		{"hour placeholder", func(in *FlightInput) { in.ID = "AVA124"; in.Hour = PlaceholderHour }, "You must choose an hour before continuing."},
		{"past", func(in *FlightInput) { in.ID = "AVA124"; in.Year = "2026"; in.Month = "2" }, "The departure date cannot be in the past."},
		{"zero duration", func(in *FlightInput) { in.ID = "AVA124"; in.ArrivalHours = "0"; in.ArrivalMinutes = "0" }, MessageZeroDuration},
		{"arrival placeholder", func(in *FlightInput) { in.ID = "AVA124"; in.ArrivalMinutes = PlaceholderMinute }, "You must choose an arrival minute before continuing."},
		{"scale zero", func(in *FlightInput) {
			in.ID = "AVA124"
			in.ScaleLocationID = "CLO"
			in.ScaleHours = "0"
			in.ScaleMinutes = "0"
		}, MessageScaleNeedsTime},
		{"unknown scale", func(in *FlightInput) {
			in.ID = "AVA124"
			in.ScaleLocationID = "XXX"
			in.ScaleHours = "1"
			in.ScaleMinutes = "0"
		}, "The scale location does not exist."},
		{"scale time without stop", func(in *FlightInput) { in.ID = "AVA124"; in.ScaleHours = "1" }, MessageScaleWithoutStop},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validFlight("AVA123")
			tc.mutate(&input)
			expectRejected(t, svc.CreateFlight(ctx, input), tc.want)
		})
	}
	if got := len(svc.Flights().List(context.Background())); got != 1 {
		t.Fatalf("expected rejected inputs to leave one flight, got %d", got)
	}
}

func TestCreateFlightWithScale(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")
	input := validFlight("AVA123")
	input.ScaleLocationID = "CLO"
	input.ScaleHours = "1"
	input.ScaleMinutes = "15"
	expectStatus(t, svc.CreateFlight(context.Background(), input), StatusCreated)

	flight := mustFlight(t, svc, "AVA123")
	if flight.ScaleAirportID() != "CLO" {
		t.Fatalf("expected CLO scale, got %s", flight.ScaleAirportID())
	}
	want := time.Date(2030, time.January, 10, 11, 45, 0, 0, time.UTC)
	if !flight.ArrivalAt().Equal(want) {
		t.Fatalf("expected arrival %v, got %v", want, flight.ArrivalAt())
	}
}

func TestDelayFlight(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")
	ctx := context.Background()
	expectStatus(t, svc.CreateFlight(ctx, validFlight("AVA123")), StatusCreated)
	before := mustFlight(t, svc, "AVA123")

	var events []domain.Event[domain.Flight]
	svc.Flights().Subscribe(func(evt domain.Event[domain.Flight]) { events = append(events, evt) })

	resp := svc.DelayFlight(ctx, "AVA123", "1", "30")
	expectStatus(t, resp, StatusOK)
	after := mustFlight(t, svc, "AVA123")
	if diff := after.DepartureAt.Sub(before.DepartureAt); diff != 90*time.Minute {
		t.Fatalf("expected 90 minute shift, got %v", diff)
	}
	after.DepartureAt = before.DepartureAt
	if after.ArrivalDuration != before.ArrivalDuration || after.Plane != before.Plane || after.NumPassengers() != before.NumPassengers() {
		t.Fatalf("delay changed more than the departure: %+v vs %+v", after, before)
	}
	if len(events) != 1 || events[0].Kind != domain.EventEntityUpdated || events[0].Previous == nil {
		t.Fatalf("expected one update event with previous value, got %+v", events)
	}

	expectRejected(t, svc.DelayFlight(ctx, "ZZZ999", "1", "0"), "The flight does not exist.")
	expectRejected(t, svc.DelayFlight(ctx, "AVA123", PlaceholderHour, "0"), "You must choose an hour before continuing.")
	expectRejected(t, svc.DelayFlight(ctx, "AVA123", "1", "x"), "The minute must be a number.")
}

func TestDelayFlightLargeOffsets(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")
	ctx := context.Background()
	expectStatus(t, svc.CreateFlight(ctx, validFlight("AVA123")), StatusCreated)
	before := mustFlight(t, svc, "AVA123")

	expectStatus(t, svc.DelayFlight(ctx, "AVA123", "3000000", "0"), StatusOK)
	after := mustFlight(t, svc, "AVA123")
	if want := before.DepartureAt.AddDate(0, 0, 125000); !after.DepartureAt.Equal(want) {
		t.Fatalf("expected departure %v, got %v", want, after.DepartureAt)
	}

	for _, hours := range []string{"99999999999", "9223372036854775807"} {
		expectRejected(t, svc.DelayFlight(ctx, "AVA123", hours, "0"), MessageDelayTooLarge)
	}
	if got := mustFlight(t, svc, "AVA123"); !got.DepartureAt.Equal(after.DepartureAt) {
		t.Fatalf("rejected delay moved the departure to %v", got.DepartureAt)
	}
}

func TestCreateFlightLargeDurations(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")
	ctx := context.Background()

	input := validFlight("AVA123")
	input.ArrivalHours = "3000000"
	input.ArrivalMinutes = "0"
	expectStatus(t, svc.CreateFlight(ctx, input), StatusCreated)
	flight := mustFlight(t, svc, "AVA123")
	if want := flight.DepartureAt.AddDate(0, 0, 125000); !flight.ArrivalAt().Equal(want) || !flight.ArrivalAt().After(flight.DepartureAt) {
		t.Fatalf("expected arrival %v, got %v", want, flight.ArrivalAt())
	}

	input = validFlight("AVA124")
	input.ArrivalHours = "9223372036854775807"
	expectRejected(t, svc.CreateFlight(ctx, input), MessageDurationTooLarge)

	input = validFlight("AVA124")
	input.ScaleLocationID = "CLO"
	input.ScaleHours = "99999999999"
	input.ScaleMinutes = "0"
	expectRejected(t, svc.CreateFlight(ctx, input), MessageDurationTooLarge)
}

func TestListFlightsOrderedByDeparture(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")
	ctx := context.Background()
	late := validFlight("LAT001")
	late.Year = "2031"
	early := validFlight("EAR001")
	early.Month = "5"
	earliest := validFlight("ZZZ001")
	for _, in := range []FlightInput{late, early, earliest} {
		expectStatus(t, svc.CreateFlight(ctx, in), StatusCreated)
	}

	resp := svc.ListFlights(ctx)
	expectStatus(t, resp, StatusOK)
	flights := resp.Payload.([]domain.Flight)
	got := []string{flights[0].ID, flights[1].ID, flights[2].ID}
	want := []string{"ZZZ001", "EAR001", "LAT001"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}

	rows := svc.FlightRows(ctx).Payload.([]FlightRow)
	first := rows[0]
	if first.ID != "ZZZ001" || first.Scale != "-" || first.DepartsAt != "2030-01-10T08:00" || first.ArrivesAt != "2030-01-10T10:30" || first.Passengers != "0" {
		t.Fatalf("unexpected row %+v", first)
	}
}

func TestFlightsByPlane(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")
	ctx := context.Background()
	expectStatus(t, svc.CreatePlane(ctx, validPlane("CD12345", "10")), StatusCreated)
	expectStatus(t, svc.CreateFlight(ctx, validFlight("AVA123")), StatusCreated)
	other := validFlight("AVA124")
	other.PlaneID = "CD12345"
	expectStatus(t, svc.CreateFlight(ctx, other), StatusCreated)

	flights := svc.FlightsByPlane(ctx, "CD12345").Payload.([]domain.Flight)
	if len(flights) != 1 || flights[0].ID != "AVA124" {
		t.Fatalf("unexpected flights %+v", flights)
	}
	expectRejected(t, svc.FlightsByPlane(ctx, "ZZ00000"), "The plane does not exist.")

	rows := svc.PlaneRows(ctx).Payload.([]PlaneRow)
	if len(rows) != 2 || rows[0].ID != "AB12345" || rows[0].Flights != "1" || rows[1].Flights != "1" {
		t.Fatalf("unexpected plane rows %+v", rows)
	}
}
