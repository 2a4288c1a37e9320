package services

import (
	"context"
	"errors"

	"climate-api/internal/format"
	"climate-api/internal/models"
	"climate-api/internal/repository"
	"climate-api/internal/validation"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

// StatisticsService computes temperature statistics over date ranges
type StatisticsService struct {
	repo    repository.ClimateRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(repo repository.ClimateRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *StatisticsService {
	return &StatisticsService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// StatisticsFrom aggregates temperatures dated on or after start.
// start must parse and lie within the dataset's date bounds.
func (s *StatisticsService) StatisticsFrom(ctx context.Context, start string) (*models.TemperatureStatistics, error) {
	timer := s.metrics.NewTimer(s.metrics.StatisticsQueryDuration)
	defer timer.ObserveDuration()

	if !validation.IsValidDate(start) {
		return nil, newRequestError(ErrInvalidDate, nil, "%s is not a date.", start)
	}

	session, err := s.repo.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := s.checkStartInRange(ctx, session, start); err != nil {
		return nil, err
	}

	agg, err := session.AggregateTemperatures(ctx, start, nil)
	if err != nil {
		return nil, err
	}

	stats, err := format.Statistics(agg)
	if errors.Is(err, format.ErrEmptyResult) {
		return nil, newRequestError(ErrEmptyResult, err, "No temperature data from %s.", start)
	}
	return stats, err
}

// StatisticsBetween aggregates temperatures dated within [start, end].
// Only start is checked against the dataset's date bounds.
func (s *StatisticsService) StatisticsBetween(ctx context.Context, start, end string) (*models.TemperatureStatistics, error) {
	timer := s.metrics.NewTimer(s.metrics.StatisticsQueryDuration)
	defer timer.ObserveDuration()

	if !validation.IsValidDate(start) || !validation.IsValidDate(end) {
		return nil, newRequestError(ErrInvalidDate, nil, "%s and/or %s are not a date.", start, end)
	}

	// ISO dates order lexicographically
	if end < start {
		return nil, newRequestError(ErrInvertedRange, nil, "%s is after %s.", start, end)
	}

	session, err := s.repo.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := s.checkStartInRange(ctx, session, start); err != nil {
		return nil, err
	}

	agg, err := session.AggregateTemperatures(ctx, start, &end)
	if err != nil {
		return nil, err
	}

	stats, err := format.Statistics(agg)
	if errors.Is(err, format.ErrEmptyResult) {
		return nil, newRequestError(ErrEmptyResult, err, "No temperature data between %s and %s.", start, end)
	}
	return stats, err
}

// checkStartInRange looks up the live dataset bounds. An empty dataset has no
// bounds, so every start date is out of range.
func (s *StatisticsService) checkStartInRange(ctx context.Context, session repository.ClimateSession, start string) error {
	minDate, maxDate, err := session.DateBounds(ctx)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			return newRequestError(ErrOutOfRange, err, "%s is not a date in the database.", start)
		}
		return err
	}

	if err := validation.InRange(start, minDate, maxDate); err != nil {
		s.logger.Debug(ctx, "[STATS_OUT_OF_RANGE] Start date outside dataset", logging.Fields{
			"start":    start,
			"min_date": minDate,
			"max_date": maxDate,
		})
		return newRequestError(ErrOutOfRange, err, "%s is not a date in the database.", start)
	}

	return nil
}
