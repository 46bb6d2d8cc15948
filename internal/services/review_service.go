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

// ReviewService coordinates card lifecycle and review submissions.
type ReviewService interface {
	EnableReview(ctx context.Context, subjectID int64) (*models.ReviewCard, error)
	DisableReview(ctx context.Context, subjectID int64) error
	SuspendReview(ctx context.Context, subjectID int64) error
	ResumeReview(ctx context.Context, subjectID int64) error
	ResetReview(ctx context.Context, subjectID int64) (*models.ReviewCard, error)
	SubmitReview(ctx context.Context, cardID int64, quality int, responseTimeMs int) (*models.ReviewCard, error)
	DueQueue(ctx context.Context, asOf time.Time, limit int) ([]models.DueCard, error)
	ReviewHistory(ctx context.Context, cardID int64) ([]models.ReviewEvent, error)
}

type reviewService struct {
	cards    repository.ReviewCardRepository
	events   repository.ReviewEventRepository
	subjects repository.SubjectRepository
	now      func() time.Time
}

// NewReviewService creates a new ReviewService
func NewReviewService(cards repository.ReviewCardRepository, events repository.ReviewEventRepository, subjects repository.SubjectRepository) ReviewService {
	// All timestamps are stored in UTC so date comparisons in SQLite stay
	// consistent.
	return &reviewService{
		cards:    cards,
		events:   events,
		subjects: subjects,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *reviewService) EnableReview(ctx context.Context, subjectID int64) (*models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("enabling review: subject_id=%d", subjectID)

	exists, err := s.subjects.Exists(ctx, subjectID)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("subject", subjectID)
	}

	archived, err := s.subjects.IsArchived(ctx, subjectID)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	if archived {
		return nil, errors.NewBadRequestError("subject is archived")
	}

	// Enabling twice must not create a duplicate card.
	existing, err := s.cards.GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	if existing != nil {
		log.Debug("review already enabled: card_id=%d", existing.ID)
		return existing, nil
	}

	card := sm2.NewCard(subjectID, s.now())
	id, err := s.cards.Insert(ctx, card)
	if err != nil {
		log.Error("failed to create review card: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	card.ID = id

	log.Info("review enabled: subject_id=%d, card_id=%d", subjectID, id)
	return &card, nil
}

func (s *reviewService) DisableReview(ctx context.Context, subjectID int64) error {
	return s.setFlags(ctx, subjectID, func(c *models.ReviewCard) { c.IsActive = false })
}

func (s *reviewService) SuspendReview(ctx context.Context, subjectID int64) error {
	return s.setFlags(ctx, subjectID, func(c *models.ReviewCard) { c.IsSuspended = true })
}

func (s *reviewService) ResumeReview(ctx context.Context, subjectID int64) error {
	return s.setFlags(ctx, subjectID, func(c *models.ReviewCard) {
		c.IsSuspended = false
		c.IsActive = true
	})
}

func (s *reviewService) setFlags(ctx context.Context, subjectID int64, mutate func(*models.ReviewCard)) error {
	log := logger.FromContext(ctx)

	card, err := s.cards.GetBySubject(ctx, subjectID)
	if err != nil {
		return errors.NewPersistenceError(err)
	}
	if card == nil {
		return errors.NewNotFoundError("review card for subject", subjectID)
	}

	mutate(card)
	card.UpdatedAt = s.now()

	if err := s.cards.Update(ctx, *card); err != nil {
		if err == repository.ErrVersionConflict {
			return errors.NewConflictError("review card", card.ID)
		}
		log.Error("failed to update review card flags: %v", err)
		return errors.NewPersistenceError(err)
	}
	return nil
}

func (s *reviewService) ResetReview(ctx context.Context, subjectID int64) (*models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("resetting review: subject_id=%d", subjectID)

	card, err := s.cards.GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("review card for subject", subjectID)
	}

	// History stays intact; only the scheduling state goes back to defaults.
	reset := sm2.Reset(*card, s.now())
	if err := s.cards.Update(ctx, reset); err != nil {
		if err == repository.ErrVersionConflict {
			return nil, errors.NewConflictError("review card", card.ID)
		}
		log.Error("failed to reset review card: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	reset.Version++

	log.Info("review reset: subject_id=%d, card_id=%d", subjectID, card.ID)
	return &reset, nil
}

func (s *reviewService) SubmitReview(ctx context.Context, cardID int64, quality int, responseTimeMs int) (*models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting review: card_id=%d, quality=%d", cardID, quality)

	// Validate before touching storage.
	if quality < sm2.MinQuality || quality > sm2.MaxQuality {
		return nil, errors.NewValidationError("quality", "must be between 0 and 5")
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("review card", cardID)
	}

	now := s.now()
	updated, err := sm2.Apply(*card, quality, now)
	if err != nil {
		return nil, errors.NewValidationError("quality", err.Error())
	}

	log.Debug("applied review, new interval=%d days, ease_factor=%.2f", updated.IntervalDays, updated.EaseFactor)

	event := models.ReviewEvent{
		CardID:           card.ID,
		Quality:          quality,
		EaseFactorBefore: card.EaseFactor,
		EaseFactorAfter:  updated.EaseFactor,
		IntervalBefore:   card.IntervalDays,
		IntervalAfter:    updated.IntervalDays,
		OccurredAt:       now,
	}
	if responseTimeMs > 0 {
		event.ResponseTimeMs = &responseTimeMs
	}

	// State and history land in one transaction; a conflict or failure
	// leaves the prior state fully intact.
	if err := s.cards.SaveReview(ctx, updated, event); err != nil {
		if err == repository.ErrVersionConflict {
			log.Warn("concurrent review submission: card_id=%d", cardID)
			return nil, errors.NewConflictError("review card", cardID)
		}
		log.Error("failed to save review: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	updated.Version++

	log.Info("review submitted: card_id=%d, quality=%d, next_review=%s",
		cardID, quality, updated.NextReviewAt.Format("2006-01-02"))
	return &updated, nil
}

func (s *reviewService) DueQueue(ctx context.Context, asOf time.Time, limit int) ([]models.DueCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("fetching due queue: as_of=%s, limit=%d", asOf.Format("2006-01-02"), limit)

	cards, err := s.cards.DueCards(ctx, sm2.StartOfDay(asOf), limit)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	return cards, nil
}

func (s *reviewService) ReviewHistory(ctx context.Context, cardID int64) ([]models.ReviewEvent, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("review card", cardID)
	}

	events, err := s.events.ListByCard(ctx, cardID)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}
	return events, nil
}
