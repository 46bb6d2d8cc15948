package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/nbarbosa/resurface/internal/db"
	"github.com/nbarbosa/resurface/internal/logger"
	"github.com/nbarbosa/resurface/internal/models"
	"github.com/nbarbosa/resurface/internal/repository"
)

const cardColumns = `id, subject_id, ease_factor, interval_days, repetitions, next_review_at, last_reviewed_at, review_count, is_active, is_suspended, version, created_at, updated_at`

type reviewCardRepository struct {
	db *sql.DB
}

// NewReviewCardRepository creates a new ReviewCardRepository implementation
func NewReviewCardRepository(db *sql.DB) repository.ReviewCardRepository {
	return &reviewCardRepository{db: db}
}

func scanCard(row interface{ Scan(...any) error }) (*models.ReviewCard, error) {
	var c models.ReviewCard
	var lastReviewedAt sql.NullTime
	err := row.Scan(&c.ID, &c.SubjectID, &c.EaseFactor, &c.IntervalDays, &c.Repetitions,
		&c.NextReviewAt, &lastReviewedAt, &c.ReviewCount, &c.IsActive, &c.IsSuspended,
		&c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.LastReviewedAt = nullableTime(lastReviewedAt)
	return &c, nil
}

func (r *reviewCardRepository) GetByID(ctx context.Context, id int64) (*models.ReviewCard, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting review card: id=%d", id)

	card, err := scanCard(r.db.QueryRowContext(ctx, `
SELECT `+cardColumns+`
FROM review_cards
WHERE id = ?
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("review card not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get review card: %v", err)
		return nil, err
	}
	return card, nil
}

func (r *reviewCardRepository) GetBySubject(ctx context.Context, subjectID int64) (*models.ReviewCard, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting review card: subject_id=%d", subjectID)

	card, err := scanCard(r.db.QueryRowContext(ctx, `
SELECT `+cardColumns+`
FROM review_cards
WHERE subject_id = ?
`, subjectID))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("review card not found: subject_id=%d", subjectID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get review card by subject: %v", err)
		return nil, err
	}
	return card, nil
}

func (r *reviewCardRepository) Insert(ctx context.Context, c models.ReviewCard) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting review card: subject_id=%d", c.SubjectID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO review_cards (subject_id, ease_factor, interval_days, repetitions, next_review_at, last_reviewed_at, review_count, is_active, is_suspended, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
`, c.SubjectID, c.EaseFactor, c.IntervalDays, c.Repetitions, c.NextReviewAt,
		timeOrNil(c.LastReviewedAt), c.ReviewCount, c.IsActive, c.IsSuspended, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		log.Error("failed to insert review card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review card id: %v", err)
		return 0, err
	}
	log.Debug("review card inserted: id=%d", id)
	return id, nil
}

// updateTx writes the card state with the optimistic version check; it is
// shared by Update and SaveReview.
func updateTx(ctx context.Context, q interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, c models.ReviewCard) error {
	res, err := q.ExecContext(ctx, `
UPDATE review_cards
SET ease_factor = ?, interval_days = ?, repetitions = ?, next_review_at = ?, last_reviewed_at = ?,
    review_count = ?, is_active = ?, is_suspended = ?, version = version + 1, updated_at = ?
WHERE id = ? AND version = ?
`, c.EaseFactor, c.IntervalDays, c.Repetitions, c.NextReviewAt, timeOrNil(c.LastReviewedAt),
		c.ReviewCount, c.IsActive, c.IsSuspended, c.UpdatedAt, c.ID, c.Version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrVersionConflict
	}
	return nil
}

func (r *reviewCardRepository) Update(ctx context.Context, c models.ReviewCard) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating review card: id=%d, interval=%d, ease=%.2f, version=%d", c.ID, c.IntervalDays, c.EaseFactor, c.Version)

	if err := updateTx(ctx, r.db, c); err != nil {
		if !errors.Is(err, repository.ErrVersionConflict) {
			log.Error("failed to update review card: %v", err)
		}
		return err
	}
	return nil
}

func (r *reviewCardRepository) SaveReview(ctx context.Context, c models.ReviewCard, e models.ReviewEvent) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("saving review: card_id=%d, quality=%d, new_interval=%d", c.ID, e.Quality, c.IntervalDays)

	err := db.Tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateTx(ctx, tx, c); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO review_events (card_id, quality, response_time_ms, ease_factor_before, ease_factor_after, interval_before, interval_after, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, e.CardID, e.Quality, intOrNil(e.ResponseTimeMs), e.EaseFactorBefore, e.EaseFactorAfter,
			e.IntervalBefore, e.IntervalAfter, e.OccurredAt)
		return err
	})
	if err != nil && !errors.Is(err, repository.ErrVersionConflict) {
		log.Error("failed to save review: %v", err)
	}
	return err
}

func (r *reviewCardRepository) DueCards(ctx context.Context, asOf time.Time, limit int) ([]models.DueCard, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("fetching due cards: as_of=%s, limit=%d", asOf.Format("2006-01-02"), limit)

	query := sqlBuilder.Select(
		"c.id", "c.subject_id", "c.ease_factor", "c.interval_days", "c.repetitions",
		"c.next_review_at", "c.last_reviewed_at", "c.review_count", "c.is_active",
		"c.is_suspended", "c.version", "c.created_at", "c.updated_at",
		"s.kind", "s.title",
	).
		From("review_cards c").
		Join("subjects s ON s.id = c.subject_id").
		Where(squirrel.LtOrEq{"c.next_review_at": asOf}).
		Where(squirrel.Eq{"c.is_active": true, "c.is_suspended": false, "s.archived": false}).
		// Never-reviewed cards sort before overdue repeats on the same day.
		OrderBy("c.next_review_at ASC", "c.last_reviewed_at IS NOT NULL", "c.last_reviewed_at ASC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build due queue query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.DueCard
	for rows.Next() {
		var c models.DueCard
		var lastReviewedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.SubjectID, &c.EaseFactor, &c.IntervalDays, &c.Repetitions,
			&c.NextReviewAt, &lastReviewedAt, &c.ReviewCount, &c.IsActive, &c.IsSuspended,
			&c.Version, &c.CreatedAt, &c.UpdatedAt, &c.SubjectKind, &c.SubjectTitle); err != nil {
			log.Error("failed to scan due card row: %v", err)
			return nil, err
		}
		c.LastReviewedAt = nullableTime(lastReviewedAt)
		cards = append(cards, c)
	}
	log.Debug("found %d due cards", len(cards))
	return cards, rows.Err()
}
