package handler

import (
	"context"
	"net/http"
)

// Pinger is the slice of the database the health handler needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the two unauthenticated status endpoints.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleRoot is the hello-world banner.
//
// HTTP: GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Portfolio SaaS Backend Running",
	})
}

// HandleStatus reports backend and database health.
//
// HTTP: GET /test → {"backend": "✅ Running", "database": "✅ Connected"}
//
// The emoji strings are part of the contract — the frontend's setup page
// prints them verbatim.
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	database := "✅ Connected"
	if h.db == nil || h.db.Ping(r.Context()) != nil {
		database = "❌ Not Available"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"backend":  "✅ Running",
		"database": database,
	})
}
