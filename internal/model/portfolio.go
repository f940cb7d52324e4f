package model

import "time"

// Portfolio is the public portfolio document for one developer.
//
// Sections and Theme are deliberately free-form — the frontend owns their
// shape (hero blocks, project cards, colour tokens, ...) and the backend
// just stores and returns them. Sections is []any rather than a slice of
// objects so entries of any JSON type round-trip. They're serialized as
// JSON columns in SQLite rather than normalised into tables.
type Portfolio struct {
	Username    string         `json:"username"`
	Headline    string         `json:"headline"`
	Subheadline string         `json:"subheadline"`
	Sections    []any          `json:"sections"`
	Theme       map[string]any `json:"theme"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewPortfolio returns the default portfolio seeded on first login.
func NewPortfolio(username string) *Portfolio {
	return &Portfolio{
		Username:    username,
		Headline:    "Building with code.",
		Subheadline: "Developer portfolio powered by GitHub.",
		Sections:    []any{},
		Theme:       map[string]any{"accent": "#3b82f6"},
	}
}
