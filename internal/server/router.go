package server

import (
	"expvar"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RequestTimeout bounds one request, including a cold season download.
const RequestTimeout = 5 * time.Minute

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// RateLimitRPS is the sustained request rate allowed per client IP on
	// the API routes. Zero or less disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers; otherwise
	// clients can pick their own rate-limit bucket.
	TrustProxy bool
}

// NewRouter wires the routes and middleware.
func NewRouter(h *Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(metrics)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimitRPS > 0 {
			r.Use(newClientLimiter(opts.RateLimitRPS, opts.RateLimitBurst).rateLimit)
		}
		r.Get("/seasons", h.Seasons)
		r.Get("/teams", h.Teams)
		r.Get("/metrics/{position}", h.Metrics)
		r.Get("/players", h.Players)
		r.Get("/compare", h.Compare)
		r.Get("/compare.csv", h.CompareCSV)
	})
	return r
}
