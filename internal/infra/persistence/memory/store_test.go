package memory

import (
	"airportcore/pkg/domain"
	"context"
	"errors"
	"testing"
	"time"
)

var departure = time.Date(2030, 1, 10, 8, 0, 0, 0, time.UTC)

func seed(t *testing.T, store *Store) {
	t.Helper()
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreatePlane(domain.Plane{ID: "AB12345", Brand: "Airbus", Model: "A320", MaxCapacity: 2, Airline: "Avianca"}); err != nil {
			return err
		}
		for _, id := range []string{"BOG", "MDE", "PTY"} {
			if _, err := tx.CreateLocation(domain.Location{AirportID: id, Name: id, City: id, Country: "CO"}); err != nil {
				return err
			}
		}
		if _, err := tx.CreatePassenger(domain.Passenger{ID: 7, FirstName: "Ana", LastName: "Ruiz"}); err != nil {
			return err
		}
		plane, _ := tx.FindPlane("AB12345")
		bog, _ := tx.FindLocation("BOG")
		mde, _ := tx.FindLocation("MDE")
		_, err := tx.CreateFlight(domain.Flight{ID: "ABC123", Plane: plane, Departure: bog, Arrival: mde, DepartureAt: departure, ArrivalDuration: domain.Duration{Hours: 1}})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestStoreCreateAndRead(t *testing.T) {
	store := NewStore(nil)
	seed(t, store)

	if _, ok := store.GetPlane("AB12345"); !ok {
		t.Fatalf("expected plane")
	}
	if _, ok := store.GetLocation("PTY"); !ok {
		t.Fatalf("expected location")
	}
	p, ok := store.GetPassenger(7)
	if !ok || p.FlightIDs == nil {
		t.Fatalf("expected passenger with initialised flight list, got %+v", p)
	}
	f, ok := store.GetFlight("ABC123")
	if !ok || f.PassengerIDs == nil {
		t.Fatalf("expected flight with initialised passenger list, got %+v", f)
	}
	if got := len(store.ListLocations()); got != 3 {
		t.Fatalf("expected 3 locations, got %d", got)
	}
	if store.RulesEngine() == nil {
		t.Fatalf("expected default rules engine")
	}
}

func TestStoreDuplicateKeysRejected(t *testing.T) {
	store := NewStore(nil)
	seed(t, store)
	ctx := context.Background()

	cases := map[string]func(tx domain.Transaction) error{
		"plane": func(tx domain.Transaction) error {
			_, err := tx.CreatePlane(domain.Plane{ID: "AB12345", Brand: "Other"})
			return err
		},
		"location": func(tx domain.Transaction) error {
			_, err := tx.CreateLocation(domain.Location{AirportID: "BOG", Name: "Other"})
			return err
		},
		"passenger": func(tx domain.Transaction) error {
			_, err := tx.CreatePassenger(domain.Passenger{ID: 7, FirstName: "Other"})
			return err
		},
		"flight": func(tx domain.Transaction) error {
			plane, _ := tx.FindPlane("AB12345")
			loc, _ := tx.FindLocation("BOG")
			_, err := tx.CreateFlight(domain.Flight{ID: "ABC123", Plane: plane, Departure: loc, Arrival: loc})
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			before := store.ExportState()
			_, err := store.RunInTransaction(ctx, fn)
			if !errors.Is(err, domain.ErrAlreadyExists) {
				t.Fatalf("expected ErrAlreadyExists, got %v", err)
			}
			after := store.ExportState()
			if len(after.Planes) != len(before.Planes) || len(after.Locations) != len(before.Locations) ||
				len(after.Passengers) != len(before.Passengers) || len(after.Flights) != len(before.Flights) {
				t.Fatalf("state changed after rejected duplicate")
			}
			if after.Planes[0].Brand != "Airbus" || after.Passengers[0].FirstName != "Ana" {
				t.Fatalf("existing record overwritten: %+v", after)
			}
		})
	}
}

func TestStoreCreateFlightRequiresReferences(t *testing.T) {
	store := NewStore(nil)
	seed(t, store)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		bog, _ := tx.FindLocation("BOG")
		_, err := tx.CreateFlight(domain.Flight{ID: "XYZ999", Plane: domain.Plane{ID: "ZZ00000"}, Departure: bog, Arrival: bog})
		return err
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected missing plane error, got %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		plane, _ := tx.FindPlane("AB12345")
		bog, _ := tx.FindLocation("BOG")
		ghost := domain.Location{AirportID: "GHO"}
		_, err := tx.CreateFlight(domain.Flight{ID: "XYZ999", Plane: plane, Departure: bog, Scale: &ghost, Arrival: bog})
		return err
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected missing scale error, got %v", err)
	}
}

func TestStoreRollbackOnError(t *testing.T) {
	store := NewStore(nil)
	seed(t, store)
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.UpdatePassenger(7, func(p *domain.Passenger) error {
			p.FlightIDs = append(p.FlightIDs, "ABC123")
			return nil
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	p, _ := store.GetPassenger(7)
	if len(p.FlightIDs) != 0 {
		t.Fatalf("expected rollback, got %+v", p.FlightIDs)
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "always_block" }

func (blockingRule) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: "always_block", Severity: domain.SeverityBlock, Message: "blocked"}}}, nil
}

func TestStoreRuleViolationBlocksCommitAndEvents(t *testing.T) {
	engine := domain.NewRulesEngine()
	store := NewStore(engine)
	events := 0
	store.PlaneEvents().Subscribe(func(domain.Event[domain.Plane]) { events++ })
	engine.Register(blockingRule{})

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreatePlane(domain.Plane{ID: "CD12345", MaxCapacity: 1})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) || violation.Error() != "blocked" {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if _, ok := store.GetPlane("CD12345"); ok {
		t.Fatalf("expected blocked plane to be discarded")
	}
	if events != 0 {
		t.Fatalf("expected no events for blocked transaction, got %d", events)
	}
}

func TestStoreDispatchesEventsAfterCommitInOrder(t *testing.T) {
	store := NewStore(nil)
	seed(t, store)

	var log []string
	store.PassengerEvents().Subscribe(func(e domain.Event[domain.Passenger]) {
		// the committed state must already be visible to subscribers
		p, _ := store.GetPassenger(e.Current.ID)
		if len(p.FlightIDs) != 1 {
			t.Errorf("subscriber saw uncommitted state: %+v", p)
		}
		if e.Previous == nil || len(e.Previous.FlightIDs) != 0 {
			t.Errorf("expected previous passenger state, got %+v", e.Previous)
		}
		log = append(log, "passenger:"+string(e.Kind))
	})
	store.FlightEvents().Subscribe(func(e domain.Event[domain.Flight]) {
		log = append(log, "flight:"+string(e.Kind))
	})

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.UpdatePassenger(7, func(p *domain.Passenger) error {
			p.FlightIDs = append(p.FlightIDs, "ABC123")
			return nil
		}); err != nil {
			return err
		}
		_, err := tx.UpdateFlight("ABC123", func(f *domain.Flight) error {
			f.PassengerIDs = append(f.PassengerIDs, 7)
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := []string{"passenger:entity_updated", "flight:entity_updated"}
	if len(log) != len(want) || log[0] != want[0] || log[1] != want[1] {
		t.Fatalf("unexpected dispatch order %v", log)
	}
}

func TestStoreUpdatePreservesIDAndMissing(t *testing.T) {
	store := NewStore(nil)
	seed(t, store)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateFlight("ABC123", func(f *domain.Flight) error {
			f.ID = "HIJ000"
			f.Delay(1, 30)
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update flight: %v", err)
	}
	f, ok := store.GetFlight("ABC123")
	if !ok || !f.DepartureAt.Equal(departure.Add(90*time.Minute)) {
		t.Fatalf("unexpected flight after update: %+v", f)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdatePassenger(99, func(*domain.Passenger) error { return nil })
		return err
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreReadsAreDefensiveCopies(t *testing.T) {
	store := NewStore(nil)
	seed(t, store)

	flights := store.ListFlights()
	flights[0].PassengerIDs = append(flights[0].PassengerIDs, 42)
	flights[0].Departure.AirportID = "XXX"
	passengers := store.ListPassengers()
	passengers[0].FlightIDs = append(passengers[0].FlightIDs, "NOPE01")

	f, _ := store.GetFlight("ABC123")
	if len(f.PassengerIDs) != 0 || f.Departure.AirportID != "BOG" {
		t.Fatalf("flight state leaked: %+v", f)
	}
	p, _ := store.GetPassenger(7)
	if len(p.FlightIDs) != 0 {
		t.Fatalf("passenger state leaked: %+v", p)
	}
}

func TestStoreViewAndExportState(t *testing.T) {
	store := NewStore(nil)
	fixed := time.Date(2029, 5, 1, 0, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return fixed })
	seed(t, store)

	err := store.View(context.Background(), func(v domain.TransactionView) error {
		if len(v.ListFlights()) != 1 || len(v.ListPlanes()) != 1 {
			t.Fatalf("unexpected view contents")
		}
		if _, ok := v.FindPassenger(7); !ok {
			t.Fatalf("expected passenger in view")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	snap := store.ExportState()
	if !snap.TakenAt.Equal(fixed) {
		t.Fatalf("expected fixed timestamp, got %v", snap.TakenAt)
	}
	if snap.Locations[0].AirportID != "BOG" || snap.Locations[2].AirportID != "PTY" {
		t.Fatalf("expected sorted locations, got %+v", snap.Locations)
	}
}

func TestStoreCanceledContextSkipsWork(t *testing.T) {
	store := NewStore(nil)
	seed(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	if err := store.View(ctx, func(TransactionView) error { called = true; return nil }); !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected canceled view without callback, got err=%v called=%v", err, called)
	}
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		called = true
		_, err := tx.CreatePassenger(domain.Passenger{ID: 8})
		return err
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected canceled transaction without callback, got err=%v called=%v", err, called)
	}
	if _, ok := store.GetPassenger(8); ok {
		t.Fatalf("canceled transaction committed")
	}
}
