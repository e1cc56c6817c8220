package core

import (
	"context"
	"testing"

	"airportcore/pkg/domain"
)

func TestCreatePlane(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var added []string
	svc.Planes().Subscribe(func(evt domain.Event[domain.Plane]) {
		if evt.Kind == domain.EventEntityAdded {
			added = append(added, evt.Key)
		}
	})
	resp := svc.CreatePlane(ctx, validPlane("AB12345", "180"))
	expectStatus(t, resp, StatusCreated)
	if plane := resp.Payload.(domain.Plane); plane.MaxCapacity != 180 {
		t.Fatalf("unexpected payload %+v", plane)
	}
	if len(added) != 1 || added[0] != "AB12345" {
		t.Fatalf("expected one added event, got %v", added)
	}

	cases := []struct {
		name  string
		input PlaneInput
		want  string
	}{
		{"duplicate", validPlane("AB12345", "10"), "A plane with this ID already exists."},
		{"blank brand", PlaneInput{ID: "CD12345", Model: "737", MaxCapacity: "10", Airline: "LATAM"}, "The brand cannot be empty."},
		{"blank airline", PlaneInput{ID: "CD12345", Brand: "Boeing", Model: "737", MaxCapacity: "10"}, "The airline cannot be empty."},
		{"empty capacity", validPlane("CD12345", ""), "Max capacity cannot be empty."},
		{"zero capacity", validPlane("CD12345", "0"), "Max capacity must be a positive number."},
		{"text capacity", validPlane("CD12345", "many"), "Max capacity must be a number."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectRejected(t, svc.CreatePlane(ctx, tc.input), tc.want)
		})
	}
	if len(svc.Planes().List(context.Background())) != 1 || len(added) != 1 {
		t.Fatalf("rejected planes changed the repository")
	}
}

func TestCreateLocation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	expectStatus(t, svc.CreateLocation(ctx, validLocation("MDE")), StatusCreated)
	expectStatus(t, svc.CreateLocation(ctx, validLocation("BOG")), StatusCreated)

	bad := validLocation("CLO")
	bad.Latitude = "91"
	bad.Longitude = "181"
	expectRejected(t, svc.CreateLocation(ctx, bad), "The longitude must be between -180 and 180.")
	bad.Longitude = "0"
	expectRejected(t, svc.CreateLocation(ctx, bad), "The latitude must be between -90 and 90.")
	expectRejected(t, svc.CreateLocation(ctx, validLocation("BOG")), "A location with this ID already exists.")
	expectRejected(t, svc.CreateLocation(ctx, validLocation("bo")), "The ID must have exactly 3 characters.")
	blank := validLocation("CLO")
	blank.City = ""
	expectRejected(t, svc.CreateLocation(ctx, blank), "The city cannot be empty.")
	notANumber := validLocation("CLO")
	notANumber.Latitude = "NaN"
	expectRejected(t, svc.CreateLocation(ctx, notANumber), "The latitude must be a valid number.")
	notANumber.Latitude = "0"
	notANumber.Longitude = "-Inf"
	expectRejected(t, svc.CreateLocation(ctx, notANumber), "The longitude must be a valid number.")

	rows := svc.LocationRows(ctx).Payload.([]LocationRow)
	if len(rows) != 2 || rows[0].AirportID != "BOG" || rows[1].AirportID != "MDE" {
		t.Fatalf("expected locations ordered by id, got %+v", rows)
	}
	list := svc.ListLocations(ctx)
	if list.Message != "Locations retrieved successfully!" || len(list.Payload.([]domain.Location)) != 2 {
		t.Fatalf("unexpected list response %+v", list)
	}
}

func TestRepositoryAddAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	plane := domain.Plane{ID: "AB12345", Brand: "Airbus", Model: "A320", MaxCapacity: 10, Airline: "Avianca"}
	if !svc.Planes().Add(ctx, plane) {
		t.Fatalf("expected first add to succeed")
	}
	changed := plane
	changed.Brand = "Boeing"
	if svc.Planes().Add(ctx, changed) {
		t.Fatalf("expected duplicate add to fail")
	}
	got, ok := svc.Planes().Get(context.Background(), "AB12345")
	if !ok || got.Brand != "Airbus" {
		t.Fatalf("duplicate add changed the repository: %+v", got)
	}
	if svc.Planes().Update(ctx, changed) {
		t.Fatalf("planes are immutable")
	}
	if _, ok := svc.Passengers().Get(context.Background(), "not-a-number"); ok {
		t.Fatalf("non-numeric passenger key should not be found")
	}
	if _, ok := svc.Locations().Get(context.Background(), "bog"); ok {
		t.Fatalf("location lookup should be case sensitive")
	}
}

func TestRepositoryReadsHonorContext(t *testing.T) {
	svc := newTestService(t)
	seedNetwork(t, svc, "100")
	ctx, cancel := context.WithCancel(context.Background())
	if _, ok := svc.Planes().Get(ctx, "AB12345"); !ok {
		t.Fatalf("expected plane before cancel")
	}
	cancel()
	if _, ok := svc.Planes().Get(ctx, "AB12345"); ok {
		t.Fatalf("expected canceled lookup to miss")
	}
	if got := svc.Locations().List(ctx); len(got) != 0 {
		t.Fatalf("expected canceled list to be empty, got %+v", got)
	}
	if svc.Planes().Add(ctx, domain.Plane{ID: "CD12345", Brand: "Boeing", Model: "737", MaxCapacity: 5, Airline: "LATAM"}) {
		t.Fatalf("expected canceled add to fail")
	}
}
