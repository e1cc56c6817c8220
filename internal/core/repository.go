package core

import (
	"context"
	"strconv"

	"airportcore/pkg/domain"
)

// Repository is the keyed collection for one entity type. Writes run in their
// own store transaction so the rules engine sees every insert; events are
// published by the store after commit.
type Repository[T any] struct {
	entity domain.EntityType
	store  domain.PersistentStore
	bus    *domain.Bus[T]
	find   func(domain.TransactionView, string) (T, bool)
	list   func(domain.TransactionView) []T
	create func(domain.Transaction, T) (T, error)
	update func(domain.Transaction, T) (T, error)
}

// Entity reports the entity type held by the repository.
func (r *Repository[T]) Entity() domain.EntityType { return r.entity }

// Create inserts item and returns the stored copy.
func (r *Repository[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	_, err := r.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = r.create(tx, item)
		return err
	})
	return created, err
}

// Add inserts item, reporting false when the key already exists or the
// insert was rejected.
func (r *Repository[T]) Add(ctx context.Context, item T) bool {
	_, err := r.Create(ctx, item)
	return err == nil
}

// Get looks an item up by its natural key. A done ctx reports a miss.
func (r *Repository[T]) Get(ctx context.Context, key string) (T, bool) {
	var (
		item T
		ok   bool
	)
	_ = r.store.View(ctx, func(v domain.TransactionView) error {
		item, ok = r.find(v, key)
		return nil
	})
	return item, ok
}

// List returns a copy of every item in key order, or nil once ctx is done.
func (r *Repository[T]) List(ctx context.Context) []T {
	var items []T
	_ = r.store.View(ctx, func(v domain.TransactionView) error {
		items = r.list(v)
		return nil
	})
	return items
}

// Update replaces the entry sharing item's key, reporting false when the
// entity type is immutable or no such entry exists.
func (r *Repository[T]) Update(ctx context.Context, item T) bool {
	if r.update == nil {
		return false
	}
	_, err := r.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := r.update(tx, item)
		return err
	})
	return err == nil
}

// Subscribe registers fn for the repository's add and update events.
func (r *Repository[T]) Subscribe(fn domain.Subscriber[T]) (unsubscribe func()) {
	return r.bus.Subscribe(fn)
}

func newPlaneRepository(store domain.PersistentStore) *Repository[domain.Plane] {
	return &Repository[domain.Plane]{
		entity: domain.EntityPlane,
		store:  store,
		bus:    store.PlaneEvents(),
		find:   func(v domain.TransactionView, key string) (domain.Plane, bool) { return v.FindPlane(key) },
		list:   func(v domain.TransactionView) []domain.Plane { return v.ListPlanes() },
		create: func(tx domain.Transaction, p domain.Plane) (domain.Plane, error) { return tx.CreatePlane(p) },
	}
}

func newLocationRepository(store domain.PersistentStore) *Repository[domain.Location] {
	return &Repository[domain.Location]{
		entity: domain.EntityLocation,
		store:  store,
		bus:    store.LocationEvents(),
		find:   func(v domain.TransactionView, key string) (domain.Location, bool) { return v.FindLocation(key) },
		list:   func(v domain.TransactionView) []domain.Location { return v.ListLocations() },
		create: func(tx domain.Transaction, l domain.Location) (domain.Location, error) { return tx.CreateLocation(l) },
	}
}

func newPassengerRepository(store domain.PersistentStore) *Repository[domain.Passenger] {
	return &Repository[domain.Passenger]{
		entity: domain.EntityPassenger,
		store:  store,
		bus:    store.PassengerEvents(),
		find: func(v domain.TransactionView, key string) (domain.Passenger, bool) {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return domain.Passenger{}, false
			}
			return v.FindPassenger(id)
		},
		list:   func(v domain.TransactionView) []domain.Passenger { return v.ListPassengers() },
		create: func(tx domain.Transaction, p domain.Passenger) (domain.Passenger, error) { return tx.CreatePassenger(p) },
		update: func(tx domain.Transaction, p domain.Passenger) (domain.Passenger, error) {
			return tx.UpdatePassenger(p.ID, func(stored *domain.Passenger) error {
				*stored = p
				return nil
			})
		},
	}
}

func newFlightRepository(store domain.PersistentStore) *Repository[domain.Flight] {
	return &Repository[domain.Flight]{
		entity: domain.EntityFlight,
		store:  store,
		bus:    store.FlightEvents(),
		find:   func(v domain.TransactionView, key string) (domain.Flight, bool) { return v.FindFlight(key) },
		list:   func(v domain.TransactionView) []domain.Flight { return v.ListFlights() },
		create: func(tx domain.Transaction, f domain.Flight) (domain.Flight, error) { return tx.CreateFlight(f) },
		update: func(tx domain.Transaction, f domain.Flight) (domain.Flight, error) {
			return tx.UpdateFlight(f.ID, func(stored *domain.Flight) error {
				*stored = f
				return nil
			})
		},
	}
}
