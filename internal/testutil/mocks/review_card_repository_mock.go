package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nbarbosa/resurface/internal/models"
)

// MockReviewCardRepository is a mock implementation of repository.ReviewCardRepository
type MockReviewCardRepository struct {
	mock.Mock
}

func (m *MockReviewCardRepository) GetByID(ctx context.Context, id int64) (*models.ReviewCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewCard), args.Error(1)
}

func (m *MockReviewCardRepository) GetBySubject(ctx context.Context, subjectID int64) (*models.ReviewCard, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewCard), args.Error(1)
}

func (m *MockReviewCardRepository) Insert(ctx context.Context, card models.ReviewCard) (int64, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewCardRepository) Update(ctx context.Context, card models.ReviewCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockReviewCardRepository) SaveReview(ctx context.Context, card models.ReviewCard, event models.ReviewEvent) error {
	args := m.Called(ctx, card, event)
	return args.Error(0)
}

func (m *MockReviewCardRepository) DueCards(ctx context.Context, asOf time.Time, limit int) ([]models.DueCard, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DueCard), args.Error(1)
}
