package models

// ReviewStats is the aggregate view returned by the stats endpoint.
type ReviewStats struct {
	DueToday              int     `json:"due_today"`
	DueThisWeek           int     `json:"due_this_week"`
	ReviewedToday         int     `json:"reviewed_today"`
	ReviewedThisWeek      int     `json:"reviewed_this_week"`
	ReviewedThisMonth     int     `json:"reviewed_this_month"`
	AverageEaseFactor     float64 `json:"average_ease_factor"`
	CurrentStreak         int     `json:"current_streak"`
	TotalReviews          int     `json:"total_reviews"`
	TotalCardsWithReviews int     `json:"total_cards_with_reviews"`
}

// CardAggregates holds the card-side aggregates computed in SQL.
type CardAggregates struct {
	DueToday              int
	DueThisWeek           int
	AverageEaseFactor     float64
	TotalCardsWithReviews int
}
