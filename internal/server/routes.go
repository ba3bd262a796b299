package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/durations/parse", s.handleParseDuration)
	s.router.HandleFunc("GET /api/durations/round", s.handleRoundDuration)
	s.router.HandleFunc("GET /api/durations/compare", s.handleCompareDurations)

	s.router.HandleFunc("GET /api/render", s.handleRender)

	s.router.HandleFunc("GET /api/board", s.handleListBoard)
	s.router.HandleFunc("POST /api/board", s.handleAddTimestamp)
	s.router.HandleFunc("GET /api/board/{name}", s.handleGetTimestamp)
	s.router.HandleFunc("DELETE /api/board/{name}", s.handleDeleteTimestamp)

	// Health check
	s.router.HandleFunc("GET /api/health", s.handleHealth)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
