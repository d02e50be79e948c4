// Package api provides HTTP routing and handlers for the orrery control API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/orrery/core/internal/api/handlers"
	"github.com/orrery/core/internal/engine"
	"github.com/orrery/core/internal/telemetry"
)

// NewRouter sets up every control-API route and handler, bound to the
// single Engine instance that owns the simulation.
func NewRouter(e *engine.Engine) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:5174"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler()
	simHandler := handlers.NewSimulationHandler(e)
	transferHandler := handlers.NewTransferHandler(e)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Post("/reset", simHandler.Reset)
		r.Post("/tick", simHandler.Tick)
		r.Post("/speed", simHandler.Speed)
		r.Post("/pause", simHandler.Pause)
		r.Post("/resume", simHandler.Resume)

		r.Get("/bodies", simHandler.Bodies)
		r.Get("/crafts", simHandler.Crafts)
		r.Get("/prediction", simHandler.Prediction)

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", transferHandler.Create)
			r.Get("/{id}", transferHandler.Get)
			r.Post("/{id}/schedule", transferHandler.Schedule)
			r.Delete("/{id}", transferHandler.Cancel)
		})
	})

	r.Route("/ws", func(r chi.Router) {
		r.Get("/world", func(w http.ResponseWriter, r *http.Request) {
			telemetry.HandleWebSocket(w, r, e.Broadcaster())
		})
	})

	r.Handle("/metrics", telemetry.MetricsHandler())

	return r
}
