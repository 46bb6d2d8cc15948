package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nbarbosa/resurface/internal/models"
)

// ErrVersionConflict is returned when a version-checked write finds that
// another writer updated the card first. Callers may reload and retry.
var ErrVersionConflict = errors.New("review card was modified concurrently")

// ReviewCardRepository handles review card data access. Get methods return
// nil without error when the row is absent.
type ReviewCardRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ReviewCard, error)
	GetBySubject(ctx context.Context, subjectID int64) (*models.ReviewCard, error)
	Insert(ctx context.Context, card models.ReviewCard) (int64, error)
	// Update persists a card only if the stored version still matches
	// card.Version, bumping the version on success.
	Update(ctx context.Context, card models.ReviewCard) error
	// SaveReview persists the updated card state and appends the review
	// event in a single transaction, with the same version check as Update.
	SaveReview(ctx context.Context, card models.ReviewCard, event models.ReviewEvent) error
	// DueCards returns cards due as of the given date, ordered by
	// next_review_at then last_reviewed_at with never-reviewed cards first.
	// A limit <= 0 means no limit.
	DueCards(ctx context.Context, asOf time.Time, limit int) ([]models.DueCard, error)
}

// ReviewEventRepository reads the append-only review history.
type ReviewEventRepository interface {
	ListByCard(ctx context.Context, cardID int64) ([]models.ReviewEvent, error)
}

// StatsRepository computes the SQL-side aggregates behind the stats endpoint.
type StatsRepository interface {
	CardAggregates(ctx context.Context, asOf time.Time) (*models.CardAggregates, error)
	ReviewCountBetween(ctx context.Context, from, to time.Time) (int, error)
	TotalReviewCount(ctx context.Context) (int, error)
	// ReviewDates returns the distinct calendar days (UTC midnight) with at
	// least one review event since the given time, most recent first.
	ReviewDates(ctx context.Context, since time.Time) ([]time.Time, error)
}

// SubjectRepository is the read contract against the content trackers.
type SubjectRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	IsArchived(ctx context.Context, id int64) (bool, error)
}
