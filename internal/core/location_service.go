package core

import (
	"context"

	"airportcore/pkg/domain"
)

// LocationInput is the raw form of a new airport.
type LocationInput struct {
	AirportID string
	Name      string
	City      string
	Country   string
	Latitude  string
	Longitude string
}

// LocationRow is the table form of a location.
type LocationRow struct {
	AirportID string `json:"airport_id"`
	Name      string `json:"name"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// CreateLocation validates input and inserts the location.
func (s *Service) CreateLocation(ctx context.Context, input LocationInput) Response {
	const op = "location.create"
	return s.run(ctx, operation{
		name:    op,
		status:  StatusCreated,
		success: "Location added successfully!",
		failure: "An unexpected error occurred while adding the location. Please try again.",
	}, func(ctx context.Context) (any, error) {
		if err := validateLocationID(op, input.AirportID); err != nil {
			return nil, err
		}
		var created domain.Location
		err := s.transact(ctx, op, func(tx domain.Transaction) error {
			if _, exists := tx.FindLocation(input.AirportID); exists {
				return domain.InvalidInput(op, "A location with this ID already exists.")
			}
			if err := requireText(op, input.Name, "The name"); err != nil {
				return err
			}
			if err := requireText(op, input.City, "The city"); err != nil {
				return err
			}
			if err := requireText(op, input.Country, "The country"); err != nil {
				return err
			}
			// Longitude is checked first so its error wins when both are bad.
			longitude, err := parseCoordinate(op, input.Longitude, "longitude", -180, 180)
			if err != nil {
				return err
			}
			latitude, err := parseCoordinate(op, input.Latitude, "latitude", -90, 90)
			if err != nil {
				return err
			}
			created, err = tx.CreateLocation(domain.Location{
				AirportID: input.AirportID,
				Name:      input.Name,
				City:      input.City,
				Country:   input.Country,
				Latitude:  latitude,
				Longitude: longitude,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("location.created", "airport_id", created.AirportID)
		return created, nil
	})
}

// ListLocations returns every location ordered by airport ID.
func (s *Service) ListLocations(ctx context.Context) Response {
	return s.run(ctx, operation{
		name:    "location.list",
		status:  StatusOK,
		success: "Locations retrieved successfully!",
		failure: "Could not retrieve locations. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		return s.locations.List(ctx), nil
	})
}

// LocationRows returns the table form of every location.
func (s *Service) LocationRows(ctx context.Context) Response {
	return s.run(ctx, operation{
		name:    "location.rows",
		status:  StatusOK,
		success: "Locations retrieved successfully!",
		failure: "Could not retrieve formatted locations. Please try again later.",
	}, func(ctx context.Context) (any, error) {
		locations := s.locations.List(ctx)
		rows := make([]LocationRow, 0, len(locations))
		for _, l := range locations {
			rows = append(rows, LocationRow{AirportID: l.AirportID, Name: l.Name, City: l.City, Country: l.Country})
		}
		return rows, nil
	})
}
