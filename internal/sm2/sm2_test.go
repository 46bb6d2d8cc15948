package sm2_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarbosa/resurface/internal/models"
	"github.com/nbarbosa/resurface/internal/sm2"
)

var reference = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestApply_NewCardPerfectScore(t *testing.T) {
	card := sm2.NewCard(42, reference)

	updated, err := sm2.Apply(card, 5, reference)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Repetitions)
	assert.Equal(t, 1, updated.IntervalDays)
	assert.InDelta(t, 2.6, updated.EaseFactor, 1e-9)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), updated.NextReviewAt)
	assert.Equal(t, 1, updated.ReviewCount)
	require.NotNil(t, updated.LastReviewedAt)
	assert.Equal(t, reference, *updated.LastReviewedAt)
}

func TestApply_MaturePassMultipliesInterval(t *testing.T) {
	card := models.ReviewCard{
		EaseFactor:   2.5,
		IntervalDays: 6,
		Repetitions:  2,
	}

	updated, err := sm2.Apply(card, 4, reference)
	require.NoError(t, err)

	// quality 4 leaves the ease factor unchanged: 0.1 - 1*(0.08+0.02) = 0
	assert.InDelta(t, 2.5, updated.EaseFactor, 1e-9)
	assert.Equal(t, 15, updated.IntervalDays, "6 * 2.5 = 15")
	assert.Equal(t, 3, updated.Repetitions)
}

func TestApply_SecondPassGetsSixDays(t *testing.T) {
	card := models.ReviewCard{
		EaseFactor:   2.5,
		IntervalDays: 1,
		Repetitions:  1,
	}

	updated, err := sm2.Apply(card, 4, reference)
	require.NoError(t, err)

	assert.Equal(t, 6, updated.IntervalDays)
	assert.Equal(t, 2, updated.Repetitions)
}

func TestApply_LapseResetsRepetitionsNotEase(t *testing.T) {
	card := models.ReviewCard{
		EaseFactor:   2.5,
		IntervalDays: 15,
		Repetitions:  3,
	}

	updated, err := sm2.Apply(card, 1, reference)
	require.NoError(t, err)

	assert.Equal(t, 0, updated.Repetitions, "lapse resets the success run")
	assert.Equal(t, 1, updated.IntervalDays)
	// EF is still recomputed: 2.5 + 0.1 - 4*(0.08 + 4*0.02) = 1.96
	assert.InDelta(t, 1.96, updated.EaseFactor, 1e-9)
}

func TestApply_EaseFactorNeverBelowFloor(t *testing.T) {
	card := models.ReviewCard{
		EaseFactor:   1.3,
		IntervalDays: 10,
		Repetitions:  4,
	}

	for i := 0; i < 10; i++ {
		var err error
		card, err = sm2.Apply(card, 0, reference)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, card.EaseFactor, 1.3)
	}
}

func TestApply_InvalidQuality(t *testing.T) {
	card := models.ReviewCard{
		EaseFactor:   2.5,
		IntervalDays: 6,
		Repetitions:  2,
	}

	for _, q := range []int{-1, 6, 100} {
		updated, err := sm2.Apply(card, q, reference)
		assert.ErrorIs(t, err, sm2.ErrInvalidQuality)
		assert.Equal(t, card, updated, "state must be unchanged on invalid quality")
	}
}

func TestApply_PerfectRunIntervalSequence(t *testing.T) {
	card := sm2.NewCard(1, reference)
	at := reference

	var intervals []int
	var eases []float64
	for i := 0; i < 4; i++ {
		var err error
		card, err = sm2.Apply(card, 5, at)
		require.NoError(t, err)
		intervals = append(intervals, card.IntervalDays)
		eases = append(eases, card.EaseFactor)
		at = card.NextReviewAt
	}

	// EF grows by 0.1 per perfect review; the third interval is
	// round(6 * 2.8) = 17, the fourth round(17 * 2.9) = 49.
	assert.Equal(t, []int{1, 6, 17, 49}, intervals)
	assert.InDelta(t, 2.9, eases[3], 1e-9)
}

func TestApply_RepetitionsIncrementPerPass(t *testing.T) {
	card := sm2.NewCard(1, reference)

	for i := 1; i <= 5; i++ {
		var err error
		card, err = sm2.Apply(card, 4, reference)
		require.NoError(t, err)
		assert.Equal(t, i, card.Repetitions)
	}

	card, err := sm2.Apply(card, 2, reference)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Repetitions)
}

func TestApply_RoundsHalfUp(t *testing.T) {
	// 5 * 1.3 = 6.5 must round up to 7, not to even.
	card := models.ReviewCard{
		EaseFactor:   1.3,
		IntervalDays: 5,
		Repetitions:  2,
	}

	updated, err := sm2.Apply(card, 4, reference)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.IntervalDays)
}

func TestApply_NextReviewMatchesInterval(t *testing.T) {
	for q := 0; q <= 5; q++ {
		card := models.ReviewCard{
			EaseFactor:   2.2,
			IntervalDays: 8,
			Repetitions:  3,
		}
		updated, err := sm2.Apply(card, q, reference)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, updated.IntervalDays, 0)
		want := sm2.StartOfDay(reference).AddDate(0, 0, updated.IntervalDays)
		assert.Equal(t, want, updated.NextReviewAt, "quality %d", q)
	}
}

func TestNewCard_Defaults(t *testing.T) {
	card := sm2.NewCard(7, reference)

	assert.Equal(t, int64(7), card.SubjectID)
	assert.Equal(t, 2.5, card.EaseFactor)
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, 1, card.IntervalDays)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), card.NextReviewAt)
	assert.True(t, card.IsActive)
	assert.False(t, card.IsSuspended)
	assert.Nil(t, card.LastReviewedAt)
}

func TestReset_RestoresInitialState(t *testing.T) {
	reviewed := reference.Add(-48 * time.Hour)
	card := models.ReviewCard{
		ID:             3,
		SubjectID:      7,
		EaseFactor:     1.7,
		IntervalDays:   40,
		Repetitions:    6,
		ReviewCount:    12,
		LastReviewedAt: &reviewed,
		IsActive:       true,
	}

	reset := sm2.Reset(card, reference)

	assert.Equal(t, int64(3), reset.ID)
	assert.Equal(t, 2.5, reset.EaseFactor)
	assert.Equal(t, 1, reset.IntervalDays)
	assert.Equal(t, 0, reset.Repetitions)
	assert.Equal(t, 0, reset.ReviewCount)
	assert.Nil(t, reset.LastReviewedAt)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), reset.NextReviewAt)
}
