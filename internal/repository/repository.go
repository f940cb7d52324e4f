// Package repository defines the storage interfaces the service layer
// depends on. The concrete implementation lives in repository/sqlite;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/nikita1503agarwal/devfolio/internal/model"
)

// DeveloperRepository stores developer profiles, keyed by username.
type DeveloperRepository interface {
	// Upsert inserts the developer or, if the username already exists,
	// refreshes every profile field. Called on every login.
	Upsert(ctx context.Context, dev *model.Developer) error
	GetByUsername(ctx context.Context, username string) (*model.Developer, error)
}

// SessionRepository stores opaque session tokens. At most one session
// exists per username.
type SessionRepository interface {
	// Replace installs the session for its username, removing any session
	// that username already had.
	Replace(ctx context.Context, sess *model.Session) error
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

// PortfolioRepository stores portfolio documents, keyed by username.
type PortfolioRepository interface {
	// CreateIfAbsent inserts the portfolio only when the username has none.
	// An existing document is left untouched.
	CreateIfAbsent(ctx context.Context, p *model.Portfolio) error
	GetByUsername(ctx context.Context, username string) (*model.Portfolio, error)
	// Upsert writes the full document, inserting or overwriting.
	Upsert(ctx context.Context, p *model.Portfolio) error
}
