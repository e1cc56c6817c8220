package core

import (
	"context"
	"strconv"
	"time"

	"airportcore/pkg/domain"
)

// BirthDateLayout renders birth dates in listing rows.
const BirthDateLayout = "2006-01-02"

const (
	msgPassengerNotFound = "Passenger with the selected ID not found."
	msgFlightNotFound    = "Flight with the selected ID not found."
)

// PassengerInput is the raw form of a passenger used by create and update.
type PassengerInput struct {
	ID        string
	FirstName string
	LastName  string
	Year      string
	Month     string
	Day       string
	PhoneCode string
	Phone     string
	Country   string
}

// PassengerRow is the table form of a passenger.
type PassengerRow struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date"`
	Age       string `json:"age"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Flights   string `json:"flights"`
}

// PassengerFlightRow is one entry of a passenger's itinerary.
type PassengerFlightRow struct {
	ID        string `json:"id"`
	DepartsAt string `json:"departs_at"`
	ArrivesAt string `json:"arrives_at"`
}

// passengerFields validates everything after the ID and existence checks.
func passengerFields(op string, id int64, input PassengerInput, now time.Time) (domain.Passenger, error) {
	for _, field := range []struct{ value, name string }{
		{input.FirstName, "The first name"},
		{input.LastName, "The last name"},
		{input.Country, "The country"},
	} {
		if err := requireText(op, field.value, field.name); err != nil {
			return domain.Passenger{}, err
		}
	}
	birth, err := parseBirthDate(op, input.Year, input.Month, input.Day, now)
	if err != nil {
		return domain.Passenger{}, err
	}
	code, err := parsePhoneCode(op, input.PhoneCode)
	if err != nil {
		return domain.Passenger{}, err
	}
	phone, err := parsePhone(op, input.Phone)
	if err != nil {
		return domain.Passenger{}, err
	}
	return domain.Passenger{
		ID:               id,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		BirthDate:        birth,
		CountryPhoneCode: code,
		Phone:            phone,
		Country:          input.Country,
	}, nil
}

// CreatePassenger validates input and registers the passenger with no
// bookings.
func (s *Service) CreatePassenger(ctx context.Context, input PassengerInput) Response {
	const op = "passenger.create"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusCreated,
		success: "Passenger created successfully!",
		failure: "An unexpected error occurred while adding the passenger. Please try again.",
	}, func(ctx context.Context) (any, error) {
		id, err := parsePassengerID(op, input.ID)
		if err != nil {
			return nil, err
		}
		now := s.clock.Now().UTC()
		var created domain.Passenger
		err = s.transact(ctx, op, func(tx domain.Transaction) error {
			if _, exists := tx.FindPassenger(id); exists {
				return domain.InvalidInput(op, "A passenger with this ID already exists.")
			}
			passenger, err := passengerFields(op, id, input, now)
			if err != nil {
				return err
			}
			passenger.FlightIDs = []string{}
			created, err = tx.CreatePassenger(passenger)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("passenger.created", "passenger_id", created.ID)
		return created, nil
	})
}

// UpdatePassenger re-validates every field and replaces the stored record,
// keeping its bookings.
func (s *Service) UpdatePassenger(ctx context.Context, input PassengerInput) Response {
	const op = "passenger.update"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusOK,
		success: "Passenger data updated successfully!",
		failure: "An unexpected error occurred while updating the passenger. Please try again.",
	}, func(ctx context.Context) (any, error) {
		id, err := parsePassengerID(op, input.ID)
		if err != nil {
			return nil, err
		}
		now := s.clock.Now().UTC()
		var updated domain.Passenger
		err = s.transact(ctx, op, func(tx domain.Transaction) error {
			if _, ok := tx.FindPassenger(id); !ok {
				return domain.InvalidInput(op, msgPassengerNotFound)
			}
			replacement, err := passengerFields(op, id, input, now)
			if err != nil {
				return err
			}
			updated, err = tx.UpdatePassenger(id, func(p *domain.Passenger) error {
				replacement.FlightIDs = p.FlightIDs
				*p = replacement
				return nil
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		s.session.refresh(updated)
		s.logger.Info("passenger.updated", "passenger_id", updated.ID)
		return updated, nil
	})
}

// AddToFlight books the passenger on the flight. Both sides of the booking
// are written in one transaction.
func (s *Service) AddToFlight(ctx context.Context, passengerID, flightID string) Response {
	const op = "passenger.book"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusOK,
		success: "Passenger added to flight successfully!",
		failure: "An unexpected error occurred while adding the passenger to the flight. Please try again.",
	}, func(ctx context.Context) (any, error) {
		var (
			booked    domain.Flight
			traveller domain.Passenger
		)
		err := s.transact(ctx, op, func(tx domain.Transaction) error {
			passenger, ok := findPassenger(tx, passengerID)
			if !ok {
				return domain.InvalidInput(op, msgPassengerNotFound)
			}
			flight, ok := tx.FindFlight(flightID)
			if !ok {
				return domain.InvalidInput(op, msgFlightNotFound)
			}
			if flight.IsFull() {
				return domain.InvalidInput(op, MessageFlightFull)
			}
			if flight.HasPassenger(passenger.ID) {
				return domain.InvalidInput(op, "The passenger is already booked on this flight.")
			}
			var err error
			booked, err = tx.UpdateFlight(flight.ID, func(f *domain.Flight) error {
				f.PassengerIDs = append(f.PassengerIDs, passenger.ID)
				return nil
			})
			if err != nil {
				return err
			}
			traveller, err = tx.UpdatePassenger(passenger.ID, func(p *domain.Passenger) error {
				p.FlightIDs = append(p.FlightIDs, flight.ID)
				return nil
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		s.session.refresh(traveller)
		s.logger.Info("passenger.booked", "passenger_id", passengerID, "flight_id", booked.ID, "passengers", booked.NumPassengers())
		return booked, nil
	})
}

// PassengerFlights returns the passenger's bookings ordered by departure.
func (s *Service) PassengerFlights(ctx context.Context, passengerID string) Response {
	const op = "passenger.flights"
	var empty bool
	resp := s.run(ctx, operation{
		name:    op,
		status:  StatusOK,
		success: "Passenger flights retrieved successfully!",
		failure: "Could not retrieve passenger flights. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		var rows []PassengerFlightRow
		err := s.view(ctx, func(v domain.TransactionView) error {
			passenger, ok := findPassenger(v, passengerID)
			if !ok {
				return domain.InvalidInput(op, msgPassengerNotFound)
			}
			flights := make([]domain.Flight, 0, passenger.NumFlights())
			for _, id := range passenger.FlightIDs {
				if f, ok := v.FindFlight(id); ok {
					flights = append(flights, f)
				}
			}
			domain.SortFlights(flights)
			rows = make([]PassengerFlightRow, 0, len(flights))
			for _, f := range flights {
				rows = append(rows, PassengerFlightRow{
					ID:        f.ID,
					DepartsAt: f.DepartureAt.Format(RowTimeLayout),
					ArrivesAt: f.ArrivalAt().Format(RowTimeLayout),
				})
			}
			empty = len(rows) == 0
			return nil
		})
		return rows, err
	})
	if resp.IsSuccess() && empty {
		resp.Message = "The passenger has no registered flights."
	}
	return resp
}

// ListPassengers returns every passenger ordered by ID.
func (s *Service) ListPassengers(ctx context.Context) Response {
	return s.run(ctx, operation{
		name:    "passenger.list",
		status:  StatusOK,
		success: "Passengers retrieved successfully!",
		failure: "Could not retrieve passengers. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		return s.passengers.List(ctx), nil
	})
}

// PassengerRows returns the table form of every passenger.
func (s *Service) PassengerRows(ctx context.Context) Response {
	return s.run(ctx, operation{
		name:    "passenger.rows",
		status:  StatusOK,
		success: "Passengers retrieved successfully!",
		failure: "Could not retrieve formatted passengers. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		now := s.clock.Now().UTC()
		passengers := s.passengers.List(ctx)
		rows := make([]PassengerRow, 0, len(passengers))
		for _, p := range passengers {
			rows = append(rows, PassengerRow{
				ID:        p.Key(),
				FullName:  p.FullName(),
				BirthDate: p.BirthDate.Format(BirthDateLayout),
				Age:       strconv.Itoa(p.Age(now)),
				Phone:     p.FormattedPhone(),
				Country:   p.Country,
				Flights:   strconv.Itoa(p.NumFlights()),
			})
		}
		return rows, nil
	})
}

// findPassenger resolves a passenger from its string key; non-numeric keys
// are simply not found.
func findPassenger(v domain.TransactionView, key string) (domain.Passenger, bool) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return domain.Passenger{}, false
	}
	return v.FindPassenger(id)
}
