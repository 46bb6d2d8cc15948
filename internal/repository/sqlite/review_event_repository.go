package sqlite

import (
	"context"
	"database/sql"

	"github.com/nbarbosa/resurface/internal/logger"
	"github.com/nbarbosa/resurface/internal/models"
	"github.com/nbarbosa/resurface/internal/repository"
)

type reviewEventRepository struct {
	db *sql.DB
}

// NewReviewEventRepository creates a new ReviewEventRepository implementation
func NewReviewEventRepository(db *sql.DB) repository.ReviewEventRepository {
	return &reviewEventRepository{db: db}
}

func (r *reviewEventRepository) ListByCard(ctx context.Context, cardID int64) ([]models.ReviewEvent, error) {
	log := logger.FromContext(ctx).WithPrefix("event_repo")
	log.Debug("listing review events: card_id=%d", cardID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, card_id, quality, response_time_ms, ease_factor_before, ease_factor_after, interval_before, interval_after, occurred_at
FROM review_events
WHERE card_id = ?
ORDER BY occurred_at ASC, id ASC
`, cardID)
	if err != nil {
		log.Error("failed to query review events: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []models.ReviewEvent
	for rows.Next() {
		var e models.ReviewEvent
		var responseTime sql.NullInt64
		if err := rows.Scan(&e.ID, &e.CardID, &e.Quality, &responseTime,
			&e.EaseFactorBefore, &e.EaseFactorAfter, &e.IntervalBefore, &e.IntervalAfter, &e.OccurredAt); err != nil {
			log.Error("failed to scan review event row: %v", err)
			return nil, err
		}
		if responseTime.Valid {
			v := int(responseTime.Int64)
			e.ResponseTimeMs = &v
		}
		events = append(events, e)
	}
	log.Debug("found %d review events", len(events))
	return events, rows.Err()
}
