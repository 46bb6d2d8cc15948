package api

import (
	"github.com/nbarbosa/resurface/internal/db"
	"github.com/nbarbosa/resurface/internal/services"
)

// Server holds the dependencies of the HTTP layer.
type Server struct {
	DB             *db.DB
	ReviewService  services.ReviewService
	StatsService   services.StatsService
	DueQueueLimit  int
	RequestTimeout int // seconds
}
