package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"climate-api/internal/repository"
	"climate-api/internal/testhelpers"
)

func TestStatisticsService_StatisticsFrom(t *testing.T) {
	store, repo := newSeededStore(t)
	svc := NewStatisticsService(repo, store.Logger, store.Metrics)

	tests := []struct {
		name     string
		start    string
		wantKind error
		wantMsg  string
		wantMin  float64
		wantAvg  float64
		wantMax  float64
		wantFrom string
		wantTo   string
	}{
		{
			name:     "trailing year",
			start:    "2016-08-23",
			wantMin:  58,
			wantAvg:  73.07,
			wantMax:  87,
			wantFrom: "2016-08-23",
			wantTo:   "2017-08-23",
		},
		{
			name:     "upper bound is inclusive",
			start:    "2017-08-23",
			wantMin:  87,
			wantAvg:  87,
			wantMax:  87,
			wantFrom: "2017-08-23",
			wantTo:   "2017-08-23",
		},
		{
			name:     "not a date",
			start:    "not-a-date",
			wantKind: ErrInvalidDate,
			wantMsg:  "not-a-date is not a date.",
		},
		{
			name:     "impossible calendar date",
			start:    "2017-02-30",
			wantKind: ErrInvalidDate,
			wantMsg:  "2017-02-30 is not a date.",
		},
		{
			name:     "before dataset",
			start:    "2009-12-31",
			wantKind: ErrOutOfRange,
			wantMsg:  "2009-12-31 is not a date in the database.",
		},
		{
			name:     "after dataset",
			start:    "2017-08-24",
			wantKind: ErrOutOfRange,
			wantMsg:  "2017-08-24 is not a date in the database.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := svc.StatisticsFrom(context.Background(), tt.start)

			if tt.wantKind != nil {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("StatisticsFrom() error = %v, want kind %v", err, tt.wantKind)
				}
				if err.Error() != tt.wantMsg {
					t.Errorf("StatisticsFrom() message = %q, want %q", err.Error(), tt.wantMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("StatisticsFrom() error = %v", err)
			}
			if stats.MinimumTemperature != tt.wantMin {
				t.Errorf("MinimumTemperature = %v, want %v", stats.MinimumTemperature, tt.wantMin)
			}
			if stats.AverageTemperature != tt.wantAvg {
				t.Errorf("AverageTemperature = %v, want %v", stats.AverageTemperature, tt.wantAvg)
			}
			if stats.MaximumTemperature != tt.wantMax {
				t.Errorf("MaximumTemperature = %v, want %v", stats.MaximumTemperature, tt.wantMax)
			}
			if stats.FromDate != tt.wantFrom || stats.ToDate != tt.wantTo {
				t.Errorf("dates = (%v, %v), want (%v, %v)", stats.FromDate, stats.ToDate, tt.wantFrom, tt.wantTo)
			}
		})
	}

	if got := testutil.ToFloat64(store.Metrics.DBSessionsOpen); got != 0 {
		t.Errorf("db_sessions_open = %v, want 0", got)
	}
}

func TestStatisticsService_StatisticsBetween(t *testing.T) {
	store, repo := newSeededStore(t)
	svc := NewStatisticsService(repo, store.Logger, store.Metrics)

	tests := []struct {
		name     string
		start    string
		end      string
		wantKind error
		wantMsg  string
		wantFrom string
		wantTo   string
	}{
		{
			name:     "within dataset",
			start:    "2012-01-01",
			end:      "2016-12-31",
			wantFrom: "2012-06-15",
			wantTo:   "2016-08-23",
		},
		{
			name:     "end past dataset is not checked",
			start:    "2017-01-01",
			end:      "2020-01-01",
			wantFrom: "2017-01-15",
			wantTo:   "2017-08-23",
		},
		{
			name:     "invalid end",
			start:    "2017-01-01",
			end:      "2017-13-01",
			wantKind: ErrInvalidDate,
			wantMsg:  "2017-01-01 and/or 2017-13-01 are not a date.",
		},
		{
			name:     "invalid start",
			start:    "yesterday",
			end:      "2017-01-01",
			wantKind: ErrInvalidDate,
			wantMsg:  "yesterday and/or 2017-01-01 are not a date.",
		},
		{
			name:     "inverted",
			start:    "2017-01-01",
			end:      "2016-01-01",
			wantKind: ErrInvertedRange,
			wantMsg:  "2017-01-01 is after 2016-01-01.",
		},
		{
			name:     "inverted wins over out of range",
			start:    "2009-01-01",
			end:      "2008-01-01",
			wantKind: ErrInvertedRange,
			wantMsg:  "2009-01-01 is after 2008-01-01.",
		},
		{
			name:     "start out of range",
			start:    "2009-12-31",
			end:      "2010-06-01",
			wantKind: ErrOutOfRange,
			wantMsg:  "2009-12-31 is not a date in the database.",
		},
		{
			name:     "no data in range",
			start:    "2013-01-01",
			end:      "2013-12-31",
			wantKind: ErrEmptyResult,
			wantMsg:  "No temperature data between 2013-01-01 and 2013-12-31.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := svc.StatisticsBetween(context.Background(), tt.start, tt.end)

			if tt.wantKind != nil {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("StatisticsBetween() error = %v, want kind %v", err, tt.wantKind)
				}
				if err.Error() != tt.wantMsg {
					t.Errorf("StatisticsBetween() message = %q, want %q", err.Error(), tt.wantMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("StatisticsBetween() error = %v", err)
			}
			if stats.FromDate != tt.wantFrom || stats.ToDate != tt.wantTo {
				t.Errorf("dates = (%v, %v), want (%v, %v)", stats.FromDate, stats.ToDate, tt.wantFrom, tt.wantTo)
			}
		})
	}

	if got := testutil.ToFloat64(store.Metrics.DBSessionsOpen); got != 0 {
		t.Errorf("db_sessions_open = %v, want 0", got)
	}
}

func TestStatisticsService_EmptyDataset(t *testing.T) {
	store := testhelpers.NewStore(t)
	repo := repository.NewClimateRepository(store.DB, store.Logger, store.Metrics)
	svc := NewStatisticsService(repo, store.Logger, store.Metrics)

	_, err := svc.StatisticsFrom(context.Background(), "2017-01-01")
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("StatisticsFrom() error = %v, want ErrOutOfRange", err)
	}
}

func TestStatisticsService_InvalidDateSkipsStore(t *testing.T) {
	store := testhelpers.NewStore(t)
	storeErr := errors.New("store unavailable")
	svc := NewStatisticsService(&failingRepository{err: storeErr}, store.Logger, store.Metrics)

	if _, err := svc.StatisticsFrom(context.Background(), "2017-1-1"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("StatisticsFrom() error = %v, want ErrInvalidDate", err)
	}
	if _, err := svc.StatisticsBetween(context.Background(), "2017-01-02", "2017-01-01"); !errors.Is(err, ErrInvertedRange) {
		t.Errorf("StatisticsBetween() error = %v, want ErrInvertedRange", err)
	}

	if _, err := svc.StatisticsFrom(context.Background(), "2017-01-01"); !errors.Is(err, storeErr) {
		t.Errorf("StatisticsFrom() error = %v, want store error", err)
	}

	if got := testutil.CollectAndCount(store.Metrics.StatisticsQueryDuration); got != 1 {
		t.Errorf("statistics_query_duration_seconds series = %d, want 1", got)
	}
}
