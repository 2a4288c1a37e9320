package models

import (
	"strconv"
	"strings"

	"climate-api/internal/dates"
)

// Station represents a weather observation site
type Station struct {
	ID        int64   `json:"-" db:"id"`
	Station   string  `json:"station" db:"station"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Elevation float64 `json:"elevation" db:"elevation"`
}

// Measurement represents one daily observation at a station.
// Date is kept as its ISO string so range filters compare lexicographically.
type Measurement struct {
	ID            int64    `json:"-" db:"id"`
	Station       string   `json:"station" db:"station"`
	Date          string   `json:"date" db:"date"`
	Precipitation *float64 `json:"precipitation" db:"prcp"`
	Temperature   float64  `json:"temperature" db:"tobs"`
}

// PrecipitationRow is a (date, precipitation, station) tuple from the measurement table
type PrecipitationRow struct {
	Date          string   `db:"date"`
	Precipitation *float64 `db:"precipitation"`
	Station       string   `db:"station"`
}

// TemperatureRow is a (date, temperature, station) tuple from the measurement table
type TemperatureRow struct {
	Date        string  `db:"date"`
	Temperature float64 `db:"temperature"`
	Station     string  `db:"station"`
}

// TemperatureAggregate is the single MIN/AVG/MAX row over a date selection.
// Every column is NULL when the selection is empty.
type TemperatureAggregate struct {
	MinTemperature *float64 `db:"min_temperature"`
	AvgTemperature *float64 `db:"avg_temperature"`
	MaxTemperature *float64 `db:"max_temperature"`
	FromDate       *string  `db:"from_date"`
	ToDate         *string  `db:"to_date"`
}

// PrecipitationRecord is the API shape of one precipitation reading
type PrecipitationRecord struct {
	Date          string   `json:"date"`
	Precipitation *float64 `json:"precipitation"`
	Station       string   `json:"station"`
}

// StationRecord is the API shape of one station
type StationRecord struct {
	Station   string  `json:"station"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

// TemperatureRecord is the API shape of one temperature reading
type TemperatureRecord struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Station     string  `json:"station"`
}

// TemperatureStatistics is the API shape of an aggregate over a date range
type TemperatureStatistics struct {
	MinimumTemperature float64 `json:"Minimum Temperature"`
	AverageTemperature float64 `json:"Average Temperature"`
	MaximumTemperature float64 `json:"Maximum Temperature"`
	FromDate           string  `json:"From Date"`
	ToDate             string  `json:"To Date"`
}

// RawStationRecord represents a single line from the stations CSV file
type RawStationRecord struct {
	Station   string
	Name      string
	Latitude  string
	Longitude string
	Elevation string
}

// ToStation converts a RawStationRecord into a Station with the given id
func (r *RawStationRecord) ToStation(id int64) (*Station, error) {
	stationID := strings.TrimSpace(r.Station)
	if stationID == "" {
		return nil, &ValidationError{
			Field:   "station",
			Value:   r.Station,
			Message: "station identifier is required",
		}
	}

	latitude, err := parseFloat("latitude", r.Latitude)
	if err != nil {
		return nil, err
	}
	longitude, err := parseFloat("longitude", r.Longitude)
	if err != nil {
		return nil, err
	}
	elevation, err := parseFloat("elevation", r.Elevation)
	if err != nil {
		return nil, err
	}

	return &Station{
		ID:        id,
		Station:   stationID,
		Name:      strings.TrimSpace(r.Name),
		Latitude:  latitude,
		Longitude: longitude,
		Elevation: elevation,
	}, nil
}

// RawMeasurementRecord represents a single line from the measurements CSV file
type RawMeasurementRecord struct {
	Station       string
	Date          string
	Precipitation string // empty when not recorded
	Temperature   string
}

// ToMeasurement converts a RawMeasurementRecord into a Measurement with the given id.
// An empty precipitation value is stored as NULL.
func (r *RawMeasurementRecord) ToMeasurement(id int64) (*Measurement, error) {
	stationID := strings.TrimSpace(r.Station)
	if stationID == "" {
		return nil, &ValidationError{
			Field:   "station",
			Value:   r.Station,
			Message: "station identifier is required",
		}
	}

	date := strings.TrimSpace(r.Date)
	if _, err := dates.ParseDate(date); err != nil {
		return nil, &ValidationError{
			Field:   "date",
			Value:   r.Date,
			Message: "invalid date format, expected YYYY-MM-DD",
		}
	}

	temperature, err := parseFloat("tobs", r.Temperature)
	if err != nil {
		return nil, err
	}

	m := &Measurement{
		ID:          id,
		Station:     stationID,
		Date:        date,
		Temperature: temperature,
	}

	if strings.TrimSpace(r.Precipitation) != "" {
		prcp, err := parseFloat("prcp", r.Precipitation)
		if err != nil {
			return nil, err
		}
		m.Precipitation = &prcp
	}

	return m, nil
}

func parseFloat(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, &ValidationError{
			Field:   field,
			Value:   value,
			Message: "invalid " + field + " value, expected a number",
		}
	}
	return f, nil
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
