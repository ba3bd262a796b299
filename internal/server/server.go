// Package server provides the JSON HTTP API for reltime.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spetersoncode/reltime/internal/clock"
	"github.com/spetersoncode/reltime/internal/service"
)

// Config holds the server configuration.
type Config struct {
	// Port is the TCP port to listen on (default 18808).
	Port int

	// Host is the address to bind to (default "127.0.0.1").
	Host string

	// DB is the board database connection.
	DB *sql.DB

	// Defaults fill unset attributes on rendered and stored timestamps.
	Defaults service.Defaults

	// Clock supplies the render instant (default wall clock).
	Clock clock.Clock
}

// Server is the HTTP server for the reltime API.
type Server struct {
	config     Config
	httpServer *http.Server
	router     *http.ServeMux
	board      *service.BoardService
}

// New creates a new Server with the given configuration.
func New(config Config) (*Server, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if config.Port == 0 {
		config.Port = 18808
	}
	if config.Host == "" {
		config.Host = "127.0.0.1"
	}
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}
	if config.Defaults.TimeZone == nil {
		config.Defaults = service.DefaultDefaults()
	}

	s := &Server{
		config: config,
		router: http.NewServeMux(),
		board:  service.NewBoardService(config.DB, config.Defaults),
	}

	s.setupRoutes()

	return s, nil
}

// Handler returns the root handler, request logging included.
func (s *Server) Handler() http.Handler {
	return logRequests(s.router)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.Address()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("url", "http://"+listener.Addr().String()).Msg("starting server")

	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Info().Msg("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address (e.g., "127.0.0.1:18808").
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		evt := log.Info()
		if rec.status >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
