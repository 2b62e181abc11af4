package ui

import (
	"net/http"

	"datadash/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewOpsRouter serves Prometheus metrics and pprof on a separate listener
// that is not exposed to dashboard users
func NewOpsRouter(m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("/metrics\n/debug/pprof/\n"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Mount("/debug", middleware.Profiler())
	return r
}
