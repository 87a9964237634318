// Package api exposes the retrieval and query services over HTTP.
package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
)

// Server is the HTTP API server. It is a thin adapter: every handler
// parses the request, calls a driving port, and serializes the result.
type Server struct {
	echo   *echo.Echo
	search driving.SearchService
	query  driving.QueryService
	ingest driving.IngestService

	addr    string
	version string
}

// Config configures the API server.
type Config struct {
	Host    string
	Port    int
	Version string
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(
	cfg Config,
	search driving.SearchService,
	query driving.QueryService,
	ingest driving.IngestService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s := &Server{
		echo:    e,
		search:  search,
		query:   query,
		ingest:  ingest,
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		version: cfg.Version,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	g := s.echo.Group("/api")
	g.POST("/ask", s.handleAsk)
	g.GET("/search", s.handleSearch)
	g.GET("/stats", s.handleStats)
	g.GET("/health", s.handleHealth)
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}
