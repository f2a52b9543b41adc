package router

import (
	"net/http"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	// RateLimit is requests per RateWindow per client IP on API routes. 0 disables it.
	RateLimit  int
	RateWindow time.Duration
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit, opts.RateWindow))
		}

		r.Get("/users/{username}/recommendations", h.GetRecommendations)
		r.Get("/users/{username}/profile", h.GetProfile)
		r.Post("/users/{username}/profile", h.BuildProfile)
		r.Get("/recommendations/batch", h.GetBatchRecommendations)
	})

	return r
}
