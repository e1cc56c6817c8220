package loader

import (
	"fmt"
	"strings"
	"time"

	"airportcore/pkg/domain"
)

const dateLayout = "2006-01-02"

// ISO local timestamps carry no zone and are interpreted as UTC.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

// PlaneRecord is the JSON shape of a plane dataset entry.
type PlaneRecord struct {
	ID          string `json:"id"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	MaxCapacity int    `json:"maxCapacity"`
	Airline     string `json:"airline"`
}

// LocationRecord is the JSON shape of a location dataset entry.
type LocationRecord struct {
	AirportID string  `json:"airportId"`
	Name      string  `json:"airportName"`
	City      string  `json:"airportCity"`
	Country   string  `json:"airportCountry"`
	Latitude  float64 `json:"airportLatitude"`
	Longitude float64 `json:"airportLongitude"`
}

// PassengerRecord is the JSON shape of a passenger dataset entry.
type PassengerRecord struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"firstname"`
	LastName         string `json:"lastname"`
	BirthDate        string `json:"birthDate"`
	CountryPhoneCode int    `json:"countryPhoneCode"`
	Phone            int64  `json:"phone"`
	Country          string `json:"country"`
}

// FlightRecord is the JSON shape of a flight dataset entry. Scale fields are
// optional; a missing or empty scaleLocation means a direct flight.
type FlightRecord struct {
	ID                     string  `json:"id"`
	Plane                  string  `json:"plane"`
	DepartureLocation      string  `json:"departureLocation"`
	ArrivalLocation        string  `json:"arrivalLocation"`
	ScaleLocation          *string `json:"scaleLocation,omitempty"`
	DepartureDate          string  `json:"departureDate"`
	HoursDurationArrival   int     `json:"hoursDurationArrival"`
	MinutesDurationArrival int     `json:"minutesDurationArrival"`
	HoursDurationScale     int     `json:"hoursDurationScale,omitempty"`
	MinutesDurationScale   int     `json:"minutesDurationScale,omitempty"`
}

func (r PlaneRecord) toDomain() (domain.Plane, error) {
	if strings.TrimSpace(r.ID) == "" {
		return domain.Plane{}, fmt.Errorf("missing id")
	}
	return domain.Plane{ID: r.ID, Brand: r.Brand, Model: r.Model, MaxCapacity: r.MaxCapacity, Airline: r.Airline}, nil
}

func (r LocationRecord) toDomain() (domain.Location, error) {
	if strings.TrimSpace(r.AirportID) == "" {
		return domain.Location{}, fmt.Errorf("missing airportId")
	}
	return domain.Location{
		AirportID: r.AirportID,
		Name:      r.Name,
		City:      r.City,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, nil
}

func (r PassengerRecord) toDomain() (domain.Passenger, error) {
	birth, err := time.ParseInLocation(dateLayout, r.BirthDate, time.UTC)
	if err != nil {
		return domain.Passenger{}, fmt.Errorf("birthDate: %w", err)
	}
	return domain.Passenger{
		ID:               r.ID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		BirthDate:        birth,
		CountryPhoneCode: r.CountryPhoneCode,
		Phone:            r.Phone,
		Country:          r.Country,
		FlightIDs:        []string{},
	}, nil
}

func (r FlightRecord) scaleID() string {
	if r.ScaleLocation == nil {
		return ""
	}
	return strings.TrimSpace(*r.ScaleLocation)
}

func parseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
