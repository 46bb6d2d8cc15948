package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nbarbosa/resurface/internal/logger"
	"github.com/nbarbosa/resurface/internal/models"
	"github.com/nbarbosa/resurface/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) CardAggregates(ctx context.Context, asOf time.Time) (*models.CardAggregates, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching card aggregates: as_of=%s", asOf.Format("2006-01-02"))

	var agg models.CardAggregates
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(CASE WHEN next_review_at <= ? THEN 1 END) AS due_today,
    COUNT(CASE WHEN next_review_at <= ? THEN 1 END) AS due_this_week,
    COALESCE(AVG(CASE WHEN review_count > 0 THEN ease_factor END), 0) AS avg_ease_factor,
    COUNT(CASE WHEN review_count > 0 THEN 1 END) AS cards_with_reviews
FROM review_cards
WHERE is_active = 1 AND is_suspended = 0
`, asOf, asOf.AddDate(0, 0, 7)).Scan(&agg.DueToday, &agg.DueThisWeek, &agg.AverageEaseFactor, &agg.TotalCardsWithReviews)
	if err != nil {
		log.Error("failed to get card aggregates: %v", err)
		return nil, err
	}
	return &agg, nil
}

func (r *statsRepository) ReviewCountBetween(ctx context.Context, from, to time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM review_events WHERE occurred_at >= ? AND occurred_at < ?
`, from, to).Scan(&count)
	if err != nil {
		log.Error("failed to count review events: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *statsRepository) TotalReviewCount(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_events`).Scan(&count)
	if err != nil {
		log.Error("failed to count total reviews: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *statsRepository) ReviewDates(ctx context.Context, since time.Time) ([]time.Time, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching distinct review dates since %s", since.Format("2006-01-02"))

	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT date(occurred_at) AS day
FROM review_events
WHERE occurred_at >= ?
ORDER BY day DESC
`, since)
	if err != nil {
		log.Error("failed to query review dates: %v", err)
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			log.Error("failed to scan review date: %v", err)
			return nil, err
		}
		d, err := time.ParseInLocation("2006-01-02", day, time.UTC)
		if err != nil {
			log.Error("failed to parse review date %q: %v", day, err)
			return nil, err
		}
		dates = append(dates, d)
	}
	log.Debug("found %d distinct review dates", len(dates))
	return dates, rows.Err()
}
