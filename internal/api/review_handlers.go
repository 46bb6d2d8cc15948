package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nbarbosa/resurface/internal/errors"
	"github.com/nbarbosa/resurface/internal/logger"
)

func subjectIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, errors.NewBadRequestError("invalid subject ID")
	}
	return id, nil
}

func (s *Server) handleEnableReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, err := subjectIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("enabling review: subject_id=%d", id)

	card, err := s.ReviewService.EnableReview(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDisableReview(w http.ResponseWriter, r *http.Request) {
	id, err := subjectIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.ReviewService.DisableReview(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleResetReview(w http.ResponseWriter, r *http.Request) {
	id, err := subjectIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.ReviewService.ResetReview(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleSuspendReview(w http.ResponseWriter, r *http.Request) {
	id, err := subjectIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.ReviewService.SuspendReview(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleResumeReview(w http.ResponseWriter, r *http.Request) {
	id, err := subjectIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.ReviewService.ResumeReview(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusNoContent, nil)
}

type submitReviewRequest struct {
	Quality        int `json:"quality"`
	ResponseTimeMs int `json:"response_time_ms"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Warn("invalid card ID: %s", idStr)
		handleError(w, r, errors.NewBadRequestError("invalid card ID"))
		return
	}

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid review body: %v", err)
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}

	log = log.WithFields(map[string]any{
		"card_id":          id,
		"quality":          req.Quality,
		"response_time_ms": req.ResponseTimeMs,
	})
	log.Debug("submitting review")

	card, err := s.ReviewService.SubmitReview(r.Context(), id, req.Quality, req.ResponseTimeMs)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("review submitted successfully")
	respondJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid card ID"))
		return
	}

	events, err := s.ReviewService.ReviewHistory(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"card_id": id,
		"count":   len(events),
		"events":  events,
	})
}

func (s *Server) handleDueQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	asOf, ok := parseAsOf(r)
	if !ok {
		handleError(w, r, errors.NewBadRequestError("invalid as_of date, expected YYYY-MM-DD"))
		return
	}
	limit, ok := parseLimit(r, s.DueQueueLimit)
	if !ok {
		handleError(w, r, errors.NewBadRequestError("invalid limit"))
		return
	}

	log.Debug("fetching due queue: as_of=%s, limit=%d", asOf.Format("2006-01-02"), limit)

	cards, err := s.ReviewService.DueQueue(r.Context(), asOf, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"as_of": asOf.Format("2006-01-02"),
		"count": len(cards),
		"cards": cards,
	})
}
