package services

import (
	"context"
	"time"

	"github.com/nbarbosa/resurface/internal/errors"
	"github.com/nbarbosa/resurface/internal/logger"
	"github.com/nbarbosa/resurface/internal/models"
	"github.com/nbarbosa/resurface/internal/repository"
	"github.com/nbarbosa/resurface/internal/sm2"
)

// StatsService computes the aggregate review statistics.
type StatsService interface {
	GetStats(ctx context.Context, asOf time.Time) (*models.ReviewStats, error)
}

type statsService struct {
	stats        repository.StatsRepository
	lookbackDays int
}

// NewStatsService creates a new StatsService. lookbackDays bounds how far
// back the streak computation scans the event history.
func NewStatsService(stats repository.StatsRepository, lookbackDays int) StatsService {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}
	return &statsService{stats: stats, lookbackDays: lookbackDays}
}

func (s *statsService) GetStats(ctx context.Context, asOf time.Time) (*models.ReviewStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing review stats: as_of=%s", asOf.Format("2006-01-02"))

	today := sm2.StartOfDay(asOf)
	tomorrow := today.AddDate(0, 0, 1)

	agg, err := s.stats.CardAggregates(ctx, today)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}

	reviewedToday, err := s.stats.ReviewCountBetween(ctx, today, tomorrow)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	reviewedWeek, err := s.stats.ReviewCountBetween(ctx, today.AddDate(0, 0, -6), tomorrow)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	reviewedMonth, err := s.stats.ReviewCountBetween(ctx, today.AddDate(0, 0, -29), tomorrow)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}

	total, err := s.stats.TotalReviewCount(ctx)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}

	dates, err := s.stats.ReviewDates(ctx, today.AddDate(0, 0, -s.lookbackDays))
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}

	stats := &models.ReviewStats{
		DueToday:              agg.DueToday,
		DueThisWeek:           agg.DueThisWeek,
		ReviewedToday:         reviewedToday,
		ReviewedThisWeek:      reviewedWeek,
		ReviewedThisMonth:     reviewedMonth,
		AverageEaseFactor:     agg.AverageEaseFactor,
		CurrentStreak:         currentStreak(dates, today),
		TotalReviews:          total,
		TotalCardsWithReviews: agg.TotalCardsWithReviews,
	}

	log.Debug("stats computed: due_today=%d, streak=%d, total_reviews=%d",
		stats.DueToday, stats.CurrentStreak, stats.TotalReviews)
	return stats, nil
}

// currentStreak counts the run of consecutive calendar days with at least
// one review, ending today. A day without a review breaks the streak, so a
// streak only exists when today itself has a review.
func currentStreak(dates []time.Time, today time.Time) int {
	reviewed := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		reviewed[sm2.StartOfDay(d)] = true
	}

	streak := 0
	for day := today; reviewed[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}
