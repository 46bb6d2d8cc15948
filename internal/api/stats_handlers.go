package api

import (
	"net/http"

	"github.com/nbarbosa/resurface/internal/errors"
	"github.com/nbarbosa/resurface/internal/logger"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	asOf, ok := parseAsOf(r)
	if !ok {
		handleError(w, r, errors.NewBadRequestError("invalid as_of date, expected YYYY-MM-DD"))
		return
	}

	log.Debug("fetching review stats: as_of=%s", asOf.Format("2006-01-02"))

	stats, err := s.StatsService.GetStats(r.Context(), asOf)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, stats)
}
