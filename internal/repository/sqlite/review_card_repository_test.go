package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nbarbosa/resurface/internal/models"
	"github.com/nbarbosa/resurface/internal/repository"
	"github.com/nbarbosa/resurface/internal/repository/sqlite"
	"github.com/nbarbosa/resurface/internal/testutil"
)

type ReviewCardRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ReviewCardRepository
}

func (s *ReviewCardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewReviewCardRepository(s.db)
}

func (s *ReviewCardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ReviewCardRepositorySuite) createSubject(title string, archived bool) int64 {
	res, err := s.db.ExecContext(context.Background(), `
		INSERT INTO subjects (kind, title, archived) VALUES (?, ?, ?)
	`, "highlight", title, archived)
	s.Require().NoError(err)

	id, err := res.LastInsertId()
	s.Require().NoError(err)
	return id
}

func (s *ReviewCardRepositorySuite) newCard(subjectID int64, nextReviewAt time.Time) models.ReviewCard {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return models.ReviewCard{
		SubjectID:    subjectID,
		EaseFactor:   2.5,
		IntervalDays: 1,
		Repetitions:  0,
		NextReviewAt: nextReviewAt,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *ReviewCardRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	subjectID := s.createSubject("The Pragmatic Programmer", false)
	due := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	id, err := s.repo.Insert(ctx, s.newCard(subjectID, due))
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(0))

	card, err := s.repo.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(card)
	s.Assert().Equal(subjectID, card.SubjectID)
	s.Assert().Equal(2.5, card.EaseFactor)
	s.Assert().Equal(1, card.IntervalDays)
	s.Assert().Equal(int64(0), card.Version)
	s.Assert().Nil(card.LastReviewedAt)
	s.Assert().True(card.NextReviewAt.Equal(due))

	bySubject, err := s.repo.GetBySubject(ctx, subjectID)
	s.Require().NoError(err)
	s.Require().NotNil(bySubject)
	s.Assert().Equal(id, bySubject.ID)
}

func (s *ReviewCardRepositorySuite) TestGetMissingReturnsNil() {
	ctx := context.Background()

	card, err := s.repo.GetByID(ctx, 9999)
	s.Require().NoError(err)
	s.Assert().Nil(card)

	card, err = s.repo.GetBySubject(ctx, 9999)
	s.Require().NoError(err)
	s.Assert().Nil(card)
}

func (s *ReviewCardRepositorySuite) TestUpdateChecksVersion() {
	ctx := context.Background()
	subjectID := s.createSubject("Thinking, Fast and Slow", false)
	due := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	id, err := s.repo.Insert(ctx, s.newCard(subjectID, due))
	s.Require().NoError(err)

	card, err := s.repo.GetByID(ctx, id)
	s.Require().NoError(err)

	card.IntervalDays = 6
	card.EaseFactor = 2.6
	err = s.repo.Update(ctx, *card)
	s.Require().NoError(err)

	updated, err := s.repo.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(6, updated.IntervalDays)
	s.Assert().Equal(2.6, updated.EaseFactor)
	s.Assert().Equal(card.Version+1, updated.Version)

	// A writer holding the old version must not overwrite the new state.
	card.IntervalDays = 99
	err = s.repo.Update(ctx, *card)
	s.Assert().ErrorIs(err, repository.ErrVersionConflict)

	unchanged, err := s.repo.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(6, unchanged.IntervalDays)
}

func (s *ReviewCardRepositorySuite) TestSaveReviewPersistsCardAndEvent() {
	ctx := context.Background()
	subjectID := s.createSubject("Meditations", false)
	due := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	id, err := s.repo.Insert(ctx, s.newCard(subjectID, due))
	s.Require().NoError(err)

	card, err := s.repo.GetByID(ctx, id)
	s.Require().NoError(err)

	reviewedAt := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	card.EaseFactor = 2.6
	card.IntervalDays = 1
	card.Repetitions = 1
	card.ReviewCount = 1
	card.NextReviewAt = time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	card.LastReviewedAt = &reviewedAt

	responseTime := 4200
	event := models.ReviewEvent{
		CardID:           id,
		Quality:          5,
		ResponseTimeMs:   &responseTime,
		EaseFactorBefore: 2.5,
		EaseFactorAfter:  2.6,
		IntervalBefore:   1,
		IntervalAfter:    1,
		OccurredAt:       reviewedAt,
	}

	err = s.repo.SaveReview(ctx, *card, event)
	s.Require().NoError(err)

	updated, err := s.repo.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(1, updated.Repetitions)
	s.Assert().Equal(1, updated.ReviewCount)
	s.Require().NotNil(updated.LastReviewedAt)

	var quality, responseMs int
	err = s.db.QueryRowContext(ctx, `SELECT quality, response_time_ms FROM review_events WHERE card_id = ?`, id).Scan(&quality, &responseMs)
	s.Require().NoError(err)
	s.Assert().Equal(5, quality)
	s.Assert().Equal(4200, responseMs)
}

func (s *ReviewCardRepositorySuite) TestSaveReviewConflictWritesNothing() {
	ctx := context.Background()
	subjectID := s.createSubject("Sapiens", false)
	due := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	id, err := s.repo.Insert(ctx, s.newCard(subjectID, due))
	s.Require().NoError(err)

	card, err := s.repo.GetByID(ctx, id)
	s.Require().NoError(err)

	// Another writer wins the race first.
	winner := *card
	winner.Repetitions = 1
	s.Require().NoError(s.repo.Update(ctx, winner))

	stale := *card
	stale.Repetitions = 7
	event := models.ReviewEvent{
		CardID:           id,
		Quality:          3,
		EaseFactorBefore: 2.5,
		EaseFactorAfter:  2.36,
		IntervalBefore:   1,
		IntervalAfter:    1,
		OccurredAt:       time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC),
	}

	err = s.repo.SaveReview(ctx, stale, event)
	s.Assert().ErrorIs(err, repository.ErrVersionConflict)

	// Neither the card state nor the event must be visible.
	current, err := s.repo.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(1, current.Repetitions)

	var count int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_events WHERE card_id = ?`, id).Scan(&count)
	s.Require().NoError(err)
	s.Assert().Equal(0, count)
}

func (s *ReviewCardRepositorySuite) TestDueCardsFiltersAndOrders() {
	ctx := context.Background()
	asOf := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	insert := func(title string, card models.ReviewCard, archived bool) int64 {
		subjectID := s.createSubject(title, archived)
		card.SubjectID = subjectID
		id, err := s.repo.Insert(ctx, card)
		s.Require().NoError(err)
		return id
	}
	reviewedAt := func(t time.Time) *time.Time { return &t }

	dayBefore := asOf.AddDate(0, 0, -1)

	// Due, never reviewed: sorts before same-day repeats.
	neverReviewed := s.newCard(0, asOf)
	idNever := insert("never reviewed", neverReviewed, false)

	// Due same day, reviewed earlier and later.
	earlier := s.newCard(0, asOf)
	earlier.LastReviewedAt = reviewedAt(asOf.AddDate(0, 0, -9))
	idEarlier := insert("reviewed long ago", earlier, false)

	later := s.newCard(0, asOf)
	later.LastReviewedAt = reviewedAt(asOf.AddDate(0, 0, -2))
	idLater := insert("reviewed recently", later, false)

	// Overdue from the day before: first overall.
	overdue := s.newCard(0, dayBefore)
	overdue.LastReviewedAt = reviewedAt(asOf.AddDate(0, 0, -3))
	idOverdue := insert("overdue", overdue, false)

	// Not yet due.
	future := s.newCard(0, asOf.AddDate(0, 0, 3))
	insert("not due yet", future, false)

	// Ineligible: disabled, suspended, archived subject.
	disabled := s.newCard(0, asOf)
	disabled.IsActive = false
	insert("disabled", disabled, false)

	suspended := s.newCard(0, asOf)
	suspended.IsSuspended = true
	insert("suspended", suspended, false)

	archived := s.newCard(0, asOf)
	insert("archived subject", archived, true)

	cards, err := s.repo.DueCards(ctx, asOf, 0)
	s.Require().NoError(err)
	s.Require().Len(cards, 4)

	s.Assert().Equal(idOverdue, cards[0].ID)
	s.Assert().Equal(idNever, cards[1].ID, "never-reviewed card sorts first within the same day")
	s.Assert().Equal(idEarlier, cards[2].ID)
	s.Assert().Equal(idLater, cards[3].ID)
	s.Assert().Equal("overdue", cards[0].SubjectTitle)

	// Limit truncates without reordering.
	limited, err := s.repo.DueCards(ctx, asOf, 2)
	s.Require().NoError(err)
	s.Require().Len(limited, 2)
	s.Assert().Equal(idOverdue, limited[0].ID)
	s.Assert().Equal(idNever, limited[1].ID)
}

func TestReviewCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewCardRepositorySuite))
}
