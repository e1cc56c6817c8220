package core

import (
	"context"
	"sync"

	"airportcore/pkg/domain"
)

// Session tracks the passenger acting as the current user.
type Session struct {
	mu      sync.RWMutex
	current *domain.Passenger
	bus     domain.Bus[domain.Passenger]
}

func newSession() *Session { return &Session{} }

// Current returns the active passenger, if one is selected.
func (s *Session) Current() (domain.Passenger, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Passenger{}, false
	}
	return *s.current, true
}

// Subscribe registers fn for current-user changes.
func (s *Session) Subscribe(fn domain.Subscriber[domain.Passenger]) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

func (s *Session) set(p domain.Passenger) {
	s.mu.Lock()
	previous := s.current
	s.current = &p
	s.mu.Unlock()
	s.bus.Publish(domain.Event[domain.Passenger]{
		Kind:     domain.EventCurrentUserChanged,
		Entity:   domain.EntityPassenger,
		Key:      p.Key(),
		Current:  p,
		Previous: previous,
	})
}

// refresh replaces the stored copy when p is the current user, without
// publishing.
func (s *Session) refresh(p domain.Passenger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == p.ID {
		s.current = &p
	}
}

// ChangeUser makes the passenger identified by passengerID the current user.
func (s *Service) ChangeUser(ctx context.Context, passengerID string) Response {
	const op = "session.change_user"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusOK,
		success: "User changed successfully!",
		failure: "An unexpected error occurred while changing the user. Please try again.",
	}, func(ctx context.Context) (any, error) {
		if passengerID == PlaceholderUser {
			return nil, domain.InvalidInput(op, "Please select a user first.")
		}
		var passenger domain.Passenger
		err := s.view(ctx, func(v domain.TransactionView) error {
			var ok bool
			passenger, ok = findPassenger(v, passengerID)
			if !ok {
				return domain.InvalidInput(op, msgPassengerNotFound)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.session.set(passenger)
		s.logger.Info("session.user_changed", "passenger_id", passenger.ID)
		return passenger, nil
	})
}

// CurrentUser returns the active passenger, if one is selected.
func (s *Service) CurrentUser() (domain.Passenger, bool) {
	return s.session.Current()
}
