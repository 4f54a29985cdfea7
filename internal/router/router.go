package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"financeflip-backend/internal/handlers"
	"financeflip-backend/internal/middleware"
	"financeflip-backend/internal/websocket"
)

func New(
	queryHandler *handlers.QueryHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Query rate limiter (30 req/min per IP)
	queryLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/suggested-prompts", queryHandler.SuggestedPrompts)

		r.Group(func(r chi.Router) {
			r.Use(queryLimiter.Middleware)
			r.Post("/query", queryHandler.Query)
			r.Post("/query/stream", queryHandler.QueryStream)
		})
	})

	// Step relay websocket; only mounted when redis is configured
	if wsHub != nil {
		r.Get("/api/v1/ws", wsHub.HandleWebSocket)
	}

	return r
}
