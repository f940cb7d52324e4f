package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikita1503agarwal/devfolio/internal/auth"
	"github.com/nikita1503agarwal/devfolio/internal/service"
)

// PortfolioHandler serves portfolio reads and updates.
type PortfolioHandler struct {
	portfolios *service.PortfolioService
	logger     *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(portfolios *service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolios: portfolios,
		logger:     logger,
	}
}

// HandleGet returns a portfolio by username.
//
// HTTP: GET /portfolio/{username}
// Auth: none — portfolios are the public face of the product.
func (h *PortfolioHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	p, err := h.portfolios.Get(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// HandleUpdate merge-patches the authenticated developer's portfolio.
//
// HTTP: POST /portfolio
// Auth: required
// BODY: {"headline": "...", "sections": [...]} — any subset of fields
//
// RESPONSE: {"updated": true} — or {"updated": false} when the patch was
// empty and nothing was written.
//
// The target username comes from the session, never from the body: you can
// only edit your own portfolio.
func (h *PortfolioHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	dev, ok := auth.DeveloperFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid session token required",
		})
		return
	}

	var patch service.PortfolioPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Warn("invalid portfolio patch JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_json",
			Message: "request body must be valid JSON",
		})
		return
	}

	updated, err := h.portfolios.Apply(r.Context(), dev.Username, &patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}
