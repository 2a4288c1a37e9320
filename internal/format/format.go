// Package format turns raw query rows into the JSON shapes served by the API.
// Field order in the response types matches the documented payloads.
package format

import (
	"errors"
	"math"

	"climate-api/internal/models"
)

// ErrEmptyResult is returned when an aggregate row carries no data
var ErrEmptyResult = errors.New("aggregate query returned no data")

// PrecipitationList converts precipitation rows, preserving order.
// A NULL precipitation is passed through as JSON null.
func PrecipitationList(rows []models.PrecipitationRow) []models.PrecipitationRecord {
	records := make([]models.PrecipitationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.PrecipitationRecord{
			Date:          row.Date,
			Precipitation: row.Precipitation,
			Station:       row.Station,
		})
	}
	return records
}

// StationList converts station rows, preserving order
func StationList(rows []models.Station) []models.StationRecord {
	records := make([]models.StationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.StationRecord{
			Station:   row.Station,
			Name:      row.Name,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			Elevation: row.Elevation,
		})
	}
	return records
}

// TemperatureList converts temperature rows, preserving order
func TemperatureList(rows []models.TemperatureRow) []models.TemperatureRecord {
	records := make([]models.TemperatureRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.TemperatureRecord{
			Date:        row.Date,
			Temperature: row.Temperature,
			Station:     row.Station,
		})
	}
	return records
}

// Statistics converts an aggregate row into the statistics payload.
// The average is rounded to two decimal places. A missing row, or the all-NULL
// row SQL returns for an empty selection, yields ErrEmptyResult.
func Statistics(agg *models.TemperatureAggregate) (*models.TemperatureStatistics, error) {
	if agg == nil ||
		agg.MinTemperature == nil ||
		agg.AvgTemperature == nil ||
		agg.MaxTemperature == nil ||
		agg.FromDate == nil ||
		agg.ToDate == nil {
		return nil, ErrEmptyResult
	}

	return &models.TemperatureStatistics{
		MinimumTemperature: *agg.MinTemperature,
		AverageTemperature: round2(*agg.AvgTemperature),
		MaximumTemperature: *agg.MaxTemperature,
		FromDate:           *agg.FromDate,
		ToDate:             *agg.ToDate,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
