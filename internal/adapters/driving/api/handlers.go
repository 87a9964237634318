package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
)

// askRequest is the POST /api/ask body.
type askRequest struct {
	Question string `json:"question"`
	UseCloud bool   `json:"use_cloud"`
	Limit    int    `json:"limit"`
	Subject  string `json:"subject"`
	Module   string `json:"module"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "question is required"})
	}

	result, err := s.query.Ask(c.Request().Context(), req.Question, driving.AskOptions{
		UseCloud: req.UseCloud,
		Limit:    req.Limit,
		Filters: domain.SearchFilters{
			Subject: req.Subject,
			Module:  req.Module,
		},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "query parameter 'q' is required"})
	}

	opts := domain.SearchOptions{
		Filters: domain.SearchFilters{
			Subject: c.QueryParam("subject"),
			Module:  c.QueryParam("module"),
		},
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
		}
		opts.Limit = limit
	}
	if raw := c.QueryParam("weight"); raw != "" {
		weight, err := strconv.ParseFloat(raw, 64)
		if err != nil || weight < 0 || weight > 1 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid weight"})
		}
		opts.SemanticWeight = weight
		opts.ForceWeight = true
	}

	response, err := s.search.Search(c.Request().Context(), query, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, response)
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.ingest.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}
