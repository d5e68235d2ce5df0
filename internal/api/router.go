package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/renovalabs/voice-frontdesk/internal/api/middleware"
	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Logger         *logging.Logger
	Handler        *Handler
	MetricsHandler http.Handler
}

// NewRouter creates a chi router with all routes configured.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(apimiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Handler.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/availability", cfg.Handler.CheckAvailability)
		r.Post("/appointments", cfg.Handler.Book)
		r.Post("/appointments/cancel", cfg.Handler.Cancel)
		r.Route("/calls/{sessionID}", func(r chi.Router) {
			r.Post("/identify", cfg.Handler.Identify)
			r.Post("/log", cfg.Handler.LogCall)
			r.Post("/finalize", cfg.Handler.FinalizeCall)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/stats", cfg.Handler.Stats)
		r.Get("/calls/recent", cfg.Handler.RecentCalls)
	})

	return r
}
