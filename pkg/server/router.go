package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	formsetroot "github.com/goliatone/go-formset"
)

func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		s.metricsMiddleware,
		s.requestIDMiddleware,
		s.panicRecoveryMiddleware,
		s.loggingMiddleware,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", false,
			map[string]any{"path": r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", false,
			map[string]any{"method": r.Method})
	})

	// System endpoints (no rate limiting)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/runtime/*", http.StripPrefix("/runtime/", http.FileServerFS(formsetroot.RuntimeAssetsFS())))

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware, s.bodyLimitMiddleware, s.csrfMiddleware())

		r.Get("/", s.handlePage)
		r.Post("/", s.handleSubmit)
		r.Post("/v1/fragments", s.handleFragments)
		r.Get("/v1/groups", s.handleGroups)
	})

	return r
}

func (s *Server) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && s.config.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
