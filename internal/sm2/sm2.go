package sm2

import (
	"errors"
	"math"
	"time"

	"github.com/nbarbosa/resurface/internal/models"
)

// Quality ratings run 0 (complete blackout) to 5 (perfect recall).
// Ratings of 3 and above count as a pass.
const (
	MinQuality     = 0
	MaxQuality     = 5
	PassingQuality = 3

	MinEaseFactor     = 1.3
	DefaultEaseFactor = 2.5

	firstInterval  = 1
	secondInterval = 6
)

// ErrInvalidQuality is returned when a rating falls outside [0, 5].
var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// Apply computes the next memory state for a card given a quality rating.
// It is a pure function: the input card is not modified and no I/O happens.
// The reference time anchors the new due date; next_review_at always lands
// on a day boundary so "due" stays a date-level comparison.
func Apply(card models.ReviewCard, quality int, reference time.Time) (models.ReviewCard, error) {
	if quality < MinQuality || quality > MaxQuality {
		return card, ErrInvalidQuality
	}

	// The ease factor is recomputed on every review, pass or fail. Lapses
	// cost memory strength but do not reset it.
	miss := float64(MaxQuality - quality)
	ef := card.EaseFactor + (0.1 - miss*(0.08+miss*0.02))
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}

	if quality >= PassingQuality {
		switch card.Repetitions {
		case 0:
			card.IntervalDays = firstInterval
		case 1:
			card.IntervalDays = secondInterval
		default:
			card.IntervalDays = roundHalfUp(float64(card.IntervalDays) * ef)
		}
		card.Repetitions++
	} else {
		card.Repetitions = 0
		card.IntervalDays = firstInterval
	}

	card.EaseFactor = ef
	card.ReviewCount++
	card.NextReviewAt = StartOfDay(reference).AddDate(0, 0, card.IntervalDays)
	reviewedAt := reference
	card.LastReviewedAt = &reviewedAt
	card.UpdatedAt = reference
	return card, nil
}

// NewCard returns the initial memory state for a subject. The card is due
// tomorrow so a freshly enabled subject shows up in the next day's queue.
func NewCard(subjectID int64, now time.Time) models.ReviewCard {
	return models.ReviewCard{
		SubjectID:    subjectID,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: firstInterval,
		Repetitions:  0,
		NextReviewAt: StartOfDay(now).AddDate(0, 0, firstInterval),
		IsActive:     true,
		IsSuspended:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Reset returns a card to its initial scheduling state while keeping its
// identity, flags, and creation time. Review history is untouched.
func Reset(card models.ReviewCard, now time.Time) models.ReviewCard {
	card.EaseFactor = DefaultEaseFactor
	card.IntervalDays = firstInterval
	card.Repetitions = 0
	card.ReviewCount = 0
	card.NextReviewAt = StartOfDay(now).AddDate(0, 0, firstInterval)
	card.LastReviewedAt = nil
	card.UpdatedAt = now
	return card
}

// StartOfDay truncates a time to midnight UTC. All due-date arithmetic runs
// at day granularity.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// roundHalfUp rounds to the nearest integer with ties going up. SM-2
// interval growth is sensitive to rounding direction, so this is pinned.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
