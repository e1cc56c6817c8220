// Package core holds the airport business-rule layer: input validation,
// repositories over the transactional store, the default rule set and the
// response envelope returned by every operation.
package core

import (
	"context"
	"errors"
	"time"

	"airportcore/internal/infra/persistence/memory"
	"airportcore/pkg/domain"
)

// Service is the application context. It owns one repository per entity
// type, the current user session and the injected observability hooks.
type Service struct {
	store   domain.PersistentStore
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	opts    serviceOptions

	planes     *Repository[domain.Plane]
	locations  *Repository[domain.Location]
	passengers *Repository[domain.Passenger]
	flights    *Repository[domain.Flight]
	session    *Session
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		store:      store,
		clock:      o.clock,
		logger:     o.logger,
		metrics:    o.metrics,
		opts:       o,
		planes:     newPlaneRepository(store),
		locations:  newLocationRepository(store),
		passengers: newPassengerRepository(store),
		flights:    newFlightRepository(store),
		session:    newSession(),
	}
}

// NewInMemoryService creates a service over a fresh in-memory store. A nil
// engine installs the default rule set, bound to the service clock.
func NewInMemoryService(engine *domain.RulesEngine, opts ...Option) *Service {
	var svc *Service
	if engine == nil {
		engine = newRulesEngine(func() time.Time { return svc.clock.Now().UTC() })
	}
	store := memory.NewStore(engine)
	svc = NewService(store, opts...)
	store.SetNowFunc(svc.clock.Now)
	return svc
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// Planes returns the plane repository.
func (s *Service) Planes() *Repository[domain.Plane] { return s.planes }

// Locations returns the location repository.
func (s *Service) Locations() *Repository[domain.Location] { return s.locations }

// Passengers returns the passenger repository.
func (s *Service) Passengers() *Repository[domain.Passenger] { return s.passengers }

// Flights returns the flight repository.
func (s *Service) Flights() *Repository[domain.Flight] { return s.flights }

// Session returns the current user register.
func (s *Service) Session() *Session { return s.session }

// operation describes one business call: its metric name and the messages
// used for the success and internal-failure envelopes.
type operation struct {
	name    string
	status  Status
	success string
	failure string
}

func (s *Service) run(ctx context.Context, op operation, fn func(context.Context) (any, error)) Response {
	start := time.Now()
	payload, err := fn(ctx)
	s.metrics.Observe(ctx, op.name, err == nil, time.Since(start))
	if err == nil {
		s.logger.Debug(op.name, "status", int(op.status))
		return Response{Message: op.success, Status: op.status, Payload: payload}
	}
	if msg, ok := invalidInputMessage(err); ok {
		s.logger.Warn(op.name+".rejected", "reason", msg)
		return Response{Message: msg, Status: StatusInvalidInput}
	}
	s.logger.Error(op.name+".failed", "error", err)
	return Response{Message: op.failure, Status: StatusInternal}
}

// invalidInputMessage extracts the caller-facing message from err when it
// is a recoverable failure.
func invalidInputMessage(err error) (string, bool) {
	if msg := domain.UserMessage(err); msg != "" {
		return msg, true
	}
	var violation domain.RuleViolationError
	if errors.As(err, &violation) {
		return violation.Error(), true
	}
	return "", false
}

// transact runs fn in a store transaction, converting bare store errors into
// internal errors tagged with op.
func (s *Service) transact(ctx context.Context, op string, fn func(domain.Transaction) error) error {
	_, err := s.store.RunInTransaction(ctx, fn)
	if err == nil {
		return nil
	}
	var de *domain.Error
	var violation domain.RuleViolationError
	if errors.As(err, &de) || errors.As(err, &violation) {
		return err
	}
	return domain.Internal(op, err)
}

func (s *Service) view(ctx context.Context, fn func(domain.TransactionView) error) error {
	return s.store.View(ctx, fn)
}
