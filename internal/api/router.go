package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// defaultWSPath is used when websocket.path is empty.
const defaultWSPath = "/ws"

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	wsPath := s.wsCfg.Path
	if wsPath == "" {
		wsPath = defaultWSPath
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/metrics", s.handleMetrics)

			r.Route("/bridge", func(r chi.Router) {
				// Command blocks
				r.Post("/client", s.handleClient)
				r.Post("/connect", s.handleConnect)
				r.Post("/publish", s.handlePublish)
				r.Post("/subscribe", s.handleSubscribe)
				r.Post("/next_message", s.handleNextMessage)

				// Query blocks
				r.Get("/connected", s.handleConnected)
				r.Get("/message_received", s.handleMessageReceived)
				r.Get("/topic", s.handleTopic)
				r.Get("/message", s.handleMessage)

				r.Get("/status", s.handleStatus)
			})

			r.Get("/journal", s.handleJournal)

			r.Get(wsPath, s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
