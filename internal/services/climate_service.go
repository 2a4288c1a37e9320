package services

import (
	"context"
	"errors"
	"fmt"

	"climate-api/internal/dates"
	"climate-api/internal/format"
	"climate-api/internal/models"
	"climate-api/internal/repository"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

// ClimateService serves the list endpoints
type ClimateService struct {
	repo    repository.ClimateRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewClimateService creates a new climate service
func NewClimateService(repo repository.ClimateRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ClimateService {
	return &ClimateService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Precipitation returns every measurement's precipitation in storage order
func (s *ClimateService) Precipitation(ctx context.Context) ([]models.PrecipitationRecord, error) {
	session, err := s.repo.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	rows, err := session.ListPrecipitation(ctx)
	if err != nil {
		return nil, err
	}

	return format.PrecipitationList(rows), nil
}

// Stations returns every station in storage order
func (s *ClimateService) Stations(ctx context.Context) ([]models.StationRecord, error) {
	session, err := s.repo.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	rows, err := session.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	return format.StationList(rows), nil
}

// TrailingYearTemperatures returns the temperature readings dated within 365
// days of the latest measurement, the latest day included.
func (s *ClimateService) TrailingYearTemperatures(ctx context.Context) ([]models.TemperatureRecord, error) {
	session, err := s.repo.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	maxDate, err := session.MaxDate(ctx)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			return nil, newRequestError(ErrEmptyResult, err, "No temperature data in the database.")
		}
		return nil, err
	}

	last, err := dates.ParseDate(maxDate)
	if err != nil {
		return nil, fmt.Errorf("stored max date is malformed: %w", err)
	}
	floor := dates.OneYearBefore(last)

	s.logger.Debug(ctx, "[TOBS_WINDOW] Computed trailing year window", logging.Fields{
		"from": floor,
		"to":   maxDate,
	})

	rows, err := session.ListTemperaturesSince(ctx, floor)
	if err != nil {
		return nil, err
	}

	return format.TemperatureList(rows), nil
}
