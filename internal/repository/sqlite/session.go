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

// compile-time check that *SessionRepo implements repository.SessionRepository
var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo stores opaque session tokens in the sessions table.
type SessionRepo struct {
	conn *sql.DB
}

// Replace installs the session for its username, invalidating any session
// that username already had.
//
// DELETE + INSERT inside a transaction rather than ON CONFLICT: the
// conflict target would be the UNIQUE username column while the primary key
// is the token, and an upsert that rewrites a primary key is harder to read
// than two obvious statements. The transaction keeps "at most one session
// per username" true even if two logins race.
func (r *SessionRepo) Replace(ctx context.Context, sess *model.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning session replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE username = ?`, sess.Username,
	); err != nil {
		return fmt.Errorf("sqlite: clearing old session for %s: %w", sess.Username, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (token, username, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		sess.Token,
		sess.Username,
		sess.ExpiresAt,
		sess.CreatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: inserting session for %s: %w", sess.Username, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing session replace: %w", err)
	}

	return nil
}

// GetByToken retrieves a session by its token. Expiry is NOT checked here —
// that's the session service's job (it also deletes the row when expired).
//
// The token never appears in the error message; it's a bearer credential
// and error strings end up in logs.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var s model.Session

	err := r.conn.QueryRowContext(ctx,
		`SELECT token, username, expires_at, created_at
		 FROM sessions WHERE token = ?`,
		token,
	).Scan(
		&s.Token,
		&s.Username,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: "session not found",
			}
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}

	return &s, nil
}

// DeleteByToken removes a session. Deleting a token that doesn't exist is
// not an error — logout and lazy expiry cleanup both want idempotence.
func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	if _, err := r.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`, token,
	); err != nil {
		return fmt.Errorf("sqlite: deleting session: %w", err)
	}
	return nil
}
