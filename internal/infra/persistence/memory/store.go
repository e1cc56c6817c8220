// Package memory provides the in-memory transactional store holding the
// airport repositories.
package memory

import (
	"airportcore/pkg/domain"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Plane aliases domain.Plane.
	Plane = domain.Plane
	// Location aliases domain.Location.
	Location = domain.Location
	// Passenger aliases domain.Passenger.
	Passenger = domain.Passenger
	// Flight aliases domain.Flight.
	Flight = domain.Flight
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	planes     map[string]Plane
	locations  map[string]Location
	passengers map[int64]Passenger
	flights    map[string]Flight
}

func newMemoryState() memoryState {
	return memoryState{
		planes:     make(map[string]Plane),
		locations:  make(map[string]Location),
		passengers: make(map[int64]Passenger),
		flights:    make(map[string]Flight),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.planes {
		cloned.planes[k] = v
	}
	for k, v := range s.locations {
		cloned.locations[k] = v
	}
	for k, v := range s.passengers {
		cloned.passengers[k] = clonePassenger(v)
	}
	for k, v := range s.flights {
		cloned.flights[k] = cloneFlight(v)
	}
	return cloned
}

func clonePassenger(p Passenger) Passenger {
	cp := p
	cp.FlightIDs = append([]string(nil), p.FlightIDs...)
	return cp
}

func cloneFlight(f Flight) Flight {
	cp := f
	if f.Scale != nil {
		scale := *f.Scale
		cp.Scale = &scale
	}
	cp.PassengerIDs = append([]int64(nil), f.PassengerIDs...)
	return cp
}

// Store provides an in-memory transactional store for the airport domain.
// Each entity type has its own event bus; events are dispatched after commit,
// outside the store lock, in the order the changes were recorded.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time

	planeBus     domain.Bus[Plane]
	locationBus  domain.Bus[Location]
	passengerBus domain.Bus[Passenger]
	flightBus    domain.Bus[Flight]
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the time provider used to stamp snapshots.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.nowFn = fn
	s.mu.Unlock()
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// PlaneEvents returns the plane repository bus.
func (s *Store) PlaneEvents() *domain.Bus[Plane] { return &s.planeBus }

// LocationEvents returns the location repository bus.
func (s *Store) LocationEvents() *domain.Bus[Location] { return &s.locationBus }

// PassengerEvents returns the passenger repository bus.
func (s *Store) PassengerEvents() *domain.Bus[Passenger] { return &s.passengerBus }

// FlightEvents returns the flight repository bus.
func (s *Store) FlightEvents() *domain.Bus[Flight] { return &s.flightBus }

// ExportState returns a sorted copy of the committed state.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := transactionView{state: &s.state}
	return domain.Snapshot{
		TakenAt:    s.nowFn(),
		Planes:     v.ListPlanes(),
		Locations:  v.ListLocations(),
		Passengers: v.ListPassengers(),
		Flights:    v.ListFlights(),
	}
}

type transaction struct {
	transactionView
	changes []Change
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListPlanes returns all planes ordered by ID.
func (v transactionView) ListPlanes() []Plane {
	out := make([]Plane, 0, len(v.state.planes))
	for _, p := range v.state.planes {
		out = append(out, p)
	}
	domain.SortPlanes(out)
	return out
}

// ListLocations returns all locations ordered by airport ID.
func (v transactionView) ListLocations() []Location {
	out := make([]Location, 0, len(v.state.locations))
	for _, l := range v.state.locations {
		out = append(out, l)
	}
	domain.SortLocations(out)
	return out
}

// ListPassengers returns all passengers ordered by numeric ID.
func (v transactionView) ListPassengers() []Passenger {
	out := make([]Passenger, 0, len(v.state.passengers))
	for _, p := range v.state.passengers {
		out = append(out, clonePassenger(p))
	}
	domain.SortPassengers(out)
	return out
}

// ListFlights returns all flights ordered by departure.
func (v transactionView) ListFlights() []Flight {
	out := make([]Flight, 0, len(v.state.flights))
	for _, f := range v.state.flights {
		out = append(out, cloneFlight(f))
	}
	domain.SortFlights(out)
	return out
}

// FindPlane retrieves a plane by ID from the snapshot.
func (v transactionView) FindPlane(id string) (Plane, bool) {
	p, ok := v.state.planes[id]
	return p, ok
}

// FindLocation retrieves a location by airport ID from the snapshot.
func (v transactionView) FindLocation(id string) (Location, bool) {
	l, ok := v.state.locations[id]
	return l, ok
}

// FindPassenger retrieves a passenger by ID from the snapshot.
func (v transactionView) FindPassenger(id int64) (Passenger, bool) {
	p, ok := v.state.passengers[id]
	if !ok {
		return Passenger{}, false
	}
	return clonePassenger(p), true
}

// FindFlight retrieves a flight by ID from the snapshot.
func (v transactionView) FindFlight(id string) (Flight, bool) {
	f, ok := v.state.flights[id]
	if !ok {
		return Flight{}, false
	}
	return cloneFlight(f), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the committed state only when fn succeeds and no rule
// reports a blocking violation.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	result, changes, err := s.commit(ctx, fn)
	if err != nil {
		return result, err
	}
	s.dispatch(changes)
	return result, nil
}

func (s *Store) commit(ctx context.Context, fn func(tx Transaction) error) (Result, []Change, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state.clone()
	tx := &transaction{transactionView: transactionView{state: &state}}

	if err := fn(tx); err != nil {
		return Result{}, nil, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&state), tx.changes)
		if err != nil {
			return Result{}, nil, err
		}
		result = res
		if res.HasBlocking() {
			return res, nil, domain.RuleViolationError{Result: res}
		}
	}

	s.state = state
	return result, tx.changes, nil
}

// View executes fn against a read-only snapshot of the store state. fn is
// not called once ctx is done.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

func (s *Store) dispatch(changes []Change) {
	for _, c := range changes {
		kind := domain.EventEntityAdded
		if c.Action == domain.ActionUpdate {
			kind = domain.EventEntityUpdated
		}
		switch after := c.After.(type) {
		case Plane:
			s.planeBus.Publish(domain.Event[Plane]{Kind: kind, Entity: c.Entity, Key: c.Key, Current: after})
		case Location:
			s.locationBus.Publish(domain.Event[Location]{Kind: kind, Entity: c.Entity, Key: c.Key, Current: after})
		case Passenger:
			evt := domain.Event[Passenger]{Kind: kind, Entity: c.Entity, Key: c.Key, Current: after}
			if before, ok := c.Before.(Passenger); ok {
				evt.Previous = &before
			}
			s.passengerBus.Publish(evt)
		case Flight:
			evt := domain.Event[Flight]{Kind: kind, Entity: c.Entity, Key: c.Key, Current: after}
			if before, ok := c.Before.(Flight); ok {
				evt.Previous = &before
			}
			s.flightBus.Publish(evt)
		}
	}
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(tx.state)
}

// CreatePlane stores a new plane within the transaction.
func (tx *transaction) CreatePlane(p Plane) (Plane, error) {
	if p.ID == "" {
		return Plane{}, fmt.Errorf("plane id required")
	}
	if _, exists := tx.state.planes[p.ID]; exists {
		return Plane{}, fmt.Errorf("plane %q: %w", p.ID, domain.ErrAlreadyExists)
	}
	tx.state.planes[p.ID] = p
	tx.recordChange(Change{Entity: domain.EntityPlane, Action: domain.ActionCreate, Key: p.ID, After: p})
	return p, nil
}

// CreateLocation stores a new location within the transaction.
func (tx *transaction) CreateLocation(l Location) (Location, error) {
	if l.AirportID == "" {
		return Location{}, fmt.Errorf("airport id required")
	}
	if _, exists := tx.state.locations[l.AirportID]; exists {
		return Location{}, fmt.Errorf("location %q: %w", l.AirportID, domain.ErrAlreadyExists)
	}
	tx.state.locations[l.AirportID] = l
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionCreate, Key: l.AirportID, After: l})
	return l, nil
}

// CreatePassenger stores a new passenger within the transaction.
func (tx *transaction) CreatePassenger(p Passenger) (Passenger, error) {
	if _, exists := tx.state.passengers[p.ID]; exists {
		return Passenger{}, fmt.Errorf("passenger %d: %w", p.ID, domain.ErrAlreadyExists)
	}
	if p.FlightIDs == nil {
		p.FlightIDs = []string{}
	}
	tx.state.passengers[p.ID] = clonePassenger(p)
	tx.recordChange(Change{Entity: domain.EntityPassenger, Action: domain.ActionCreate, Key: p.Key(), After: clonePassenger(p)})
	return clonePassenger(p), nil
}

// UpdatePassenger mutates a passenger using the provided mutator function.
// The ID is preserved regardless of what the mutator does.
func (tx *transaction) UpdatePassenger(id int64, mutator func(*Passenger) error) (Passenger, error) {
	current, ok := tx.state.passengers[id]
	if !ok {
		return Passenger{}, fmt.Errorf("passenger %d: %w", id, domain.ErrNotFound)
	}
	before := clonePassenger(current)
	current = clonePassenger(current)
	if err := mutator(&current); err != nil {
		return Passenger{}, err
	}
	current.ID = id
	tx.state.passengers[id] = clonePassenger(current)
	tx.recordChange(Change{Entity: domain.EntityPassenger, Action: domain.ActionUpdate, Key: strconv.FormatInt(id, 10), Before: before, After: clonePassenger(current)})
	return clonePassenger(current), nil
}

// CreateFlight stores a new flight within the transaction. Plane and location
// references must already exist in the transaction state.
func (tx *transaction) CreateFlight(f Flight) (Flight, error) {
	if f.ID == "" {
		return Flight{}, fmt.Errorf("flight id required")
	}
	if _, exists := tx.state.flights[f.ID]; exists {
		return Flight{}, fmt.Errorf("flight %q: %w", f.ID, domain.ErrAlreadyExists)
	}
	if _, ok := tx.state.planes[f.Plane.ID]; !ok {
		return Flight{}, fmt.Errorf("plane %q: %w", f.Plane.ID, domain.ErrNotFound)
	}
	refs := []string{f.Departure.AirportID, f.Arrival.AirportID}
	if f.Scale != nil {
		refs = append(refs, f.Scale.AirportID)
	}
	for _, ref := range refs {
		if _, ok := tx.state.locations[ref]; !ok {
			return Flight{}, fmt.Errorf("location %q: %w", ref, domain.ErrNotFound)
		}
	}
	if f.PassengerIDs == nil {
		f.PassengerIDs = []int64{}
	}
	tx.state.flights[f.ID] = cloneFlight(f)
	tx.recordChange(Change{Entity: domain.EntityFlight, Action: domain.ActionCreate, Key: f.ID, After: cloneFlight(f)})
	return cloneFlight(f), nil
}

// UpdateFlight mutates a flight using the provided mutator function.
func (tx *transaction) UpdateFlight(id string, mutator func(*Flight) error) (Flight, error) {
	current, ok := tx.state.flights[id]
	if !ok {
		return Flight{}, fmt.Errorf("flight %q: %w", id, domain.ErrNotFound)
	}
	before := cloneFlight(current)
	current = cloneFlight(current)
	if err := mutator(&current); err != nil {
		return Flight{}, err
	}
	current.ID = id
	tx.state.flights[id] = cloneFlight(current)
	tx.recordChange(Change{Entity: domain.EntityFlight, Action: domain.ActionUpdate, Key: id, Before: before, After: cloneFlight(current)})
	return cloneFlight(current), nil
}

// Read helpers ---------------------------------------------------------------

// GetPlane retrieves a plane by ID from committed state.
func (s *Store) GetPlane(id string) (Plane, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.FindPlane(id)
}

// ListPlanes returns all planes from committed state.
func (s *Store) ListPlanes() []Plane {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListPlanes()
}

// GetLocation retrieves a location by airport ID.
func (s *Store) GetLocation(id string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.FindLocation(id)
}

// ListLocations returns all locations.
func (s *Store) ListLocations() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListLocations()
}

// GetPassenger retrieves a passenger by ID.
func (s *Store) GetPassenger(id int64) (Passenger, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.FindPassenger(id)
}

// ListPassengers returns all passengers.
func (s *Store) ListPassengers() []Passenger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListPassengers()
}

// GetFlight retrieves a flight by ID.
func (s *Store) GetFlight(id string) (Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.FindFlight(id)
}

// ListFlights returns all flights.
func (s *Store) ListFlights() []Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListFlights()
}
