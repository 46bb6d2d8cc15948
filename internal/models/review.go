package models

import "time"

// ReviewCard holds the memory state for one reviewable subject.
// There is at most one live card per subject.
type ReviewCard struct {
	ID             int64      `json:"id"`
	SubjectID      int64      `json:"subject_id"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	ReviewCount    int        `json:"review_count"`
	IsActive       bool       `json:"is_active"`
	IsSuspended    bool       `json:"is_suspended"`
	Version        int64      `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ReviewEvent is an append-only record of a single review submission.
type ReviewEvent struct {
	ID               int64     `json:"id"`
	CardID           int64     `json:"card_id"`
	Quality          int       `json:"quality"`
	ResponseTimeMs   *int      `json:"response_time_ms"`
	EaseFactorBefore float64   `json:"ease_factor_before"`
	EaseFactorAfter  float64   `json:"ease_factor_after"`
	IntervalBefore   int       `json:"interval_before"`
	IntervalAfter    int       `json:"interval_after"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// DueCard is a card in the due queue together with a summary of its subject.
type DueCard struct {
	ReviewCard
	SubjectKind  string `json:"subject_kind"`
	SubjectTitle string `json:"subject_title"`
}

// Subject is the minimal view of a reviewable content item. The content
// trackers own the full record; the scheduler only reads existence and
// the archived flag.
type Subject struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}
