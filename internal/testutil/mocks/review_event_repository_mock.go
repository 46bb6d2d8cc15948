package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nbarbosa/resurface/internal/models"
)

// MockReviewEventRepository is a mock implementation of repository.ReviewEventRepository
type MockReviewEventRepository struct {
	mock.Mock
}

func (m *MockReviewEventRepository) ListByCard(ctx context.Context, cardID int64) ([]models.ReviewEvent, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewEvent), args.Error(1)
}
