package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nikita1503agarwal/devfolio/internal/apperror"
	"github.com/nikita1503agarwal/devfolio/internal/model"
	"github.com/nikita1503agarwal/devfolio/internal/repository"
)

// compile-time check that *DeveloperRepo implements repository.DeveloperRepository
var _ repository.DeveloperRepository = (*DeveloperRepo)(nil)

// DeveloperRepo stores developer profiles in the developers table.
type DeveloperRepo struct {
	conn *sql.DB
}

// Upsert inserts a developer or refreshes an existing row's profile fields.
//
// We use INSERT ... ON CONFLICT(username) DO UPDATE rather than
// INSERT OR REPLACE: REPLACE deletes and re-inserts the row, which would
// clobber created_at. ON CONFLICT updates in place, so created_at survives
// across logins while every mirrored profile field is refreshed.
func (r *DeveloperRepo) Upsert(ctx context.Context, dev *model.Developer) error {
	now := time.Now()
	dev.UpdatedAt = now
	if dev.CreatedAt.IsZero() {
		dev.CreatedAt = now
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO developers (
			username, name, email, avatar_url, bio, company, location,
			blog, twitter_username, html_url, public_repos, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
			name             = excluded.name,
			email            = excluded.email,
			avatar_url       = excluded.avatar_url,
			bio              = excluded.bio,
			company          = excluded.company,
			location         = excluded.location,
			blog             = excluded.blog,
			twitter_username = excluded.twitter_username,
			html_url         = excluded.html_url,
			public_repos     = excluded.public_repos,
			updated_at       = excluded.updated_at`,
		dev.Username,
		dev.Name,
		dev.Email,
		dev.AvatarURL,
		dev.Bio,
		dev.Company,
		dev.Location,
		dev.Blog,
		dev.TwitterUsername,
		dev.HTMLURL,
		dev.PublicRepos,
		dev.CreatedAt,
		dev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting developer %s: %w", dev.Username, err)
	}

	// Read the canonical row back so the caller sees the preserved
	// created_at on the update path.
	fresh, err := r.GetByUsername(ctx, dev.Username)
	if err != nil {
		return fmt.Errorf("sqlite: reading back developer %s: %w", dev.Username, err)
	}
	*dev = *fresh

	return nil
}

// GetByUsername retrieves a developer by username.
// Returns apperror.ErrNotFound if no developer exists with that username.
func (r *DeveloperRepo) GetByUsername(ctx context.Context, username string) (*model.Developer, error) {
	var d model.Developer

	err := r.conn.QueryRowContext(ctx,
		`SELECT username, name, email, avatar_url, bio, company, location,
		        blog, twitter_username, html_url, public_repos, created_at, updated_at
		 FROM developers WHERE username = ?`,
		username,
	).Scan(
		&d.Username,
		&d.Name,
		&d.Email,
		&d.AvatarURL,
		&d.Bio,
		&d.Company,
		&d.Location,
		&d.Blog,
		&d.TwitterUsername,
		&d.HTMLURL,
		&d.PublicRepos,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("developer", username)
		}
		return nil, fmt.Errorf("sqlite: getting developer %s: %w", username, err)
	}

	return &d, nil
}
