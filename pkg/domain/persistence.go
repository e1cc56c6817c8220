package domain

import "context"

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
}

// Transaction exposes the mutations a persistence implementation must support
// within an atomic scope. Nothing is visible outside the transaction, and no
// event is published, until the surrounding RunInTransaction commits.
type Transaction interface {
	TransactionView
	Snapshot() TransactionView
	CreatePlane(Plane) (Plane, error)
	CreateLocation(Location) (Location, error)
	CreatePassenger(Passenger) (Passenger, error)
	UpdatePassenger(id int64, mutator func(*Passenger) error) (Passenger, error)
	CreateFlight(Flight) (Flight, error)
	UpdateFlight(id string, mutator func(*Flight) error) (Flight, error)
}

// PersistentStore is the store abstraction consumed by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	ExportState() Snapshot
	PlaneEvents() *Bus[Plane]
	LocationEvents() *Bus[Location]
	PassengerEvents() *Bus[Passenger]
	FlightEvents() *Bus[Flight]
}
