package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(time.Duration(s.RequestTimeout) * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/subjects/{id}/review", s.handleEnableReview)
		r.Delete("/subjects/{id}/review", s.handleDisableReview)
		r.Post("/subjects/{id}/review/reset", s.handleResetReview)
		r.Post("/subjects/{id}/review/suspend", s.handleSuspendReview)
		r.Post("/subjects/{id}/review/resume", s.handleResumeReview)
		r.Post("/cards/{id}/review", s.handleSubmitReview)
		r.Get("/cards/{id}/history", s.handleReviewHistory)
		r.Get("/review/queue", s.handleDueQueue)
		r.Get("/review/stats", s.handleStats)
	})

	return r
}
