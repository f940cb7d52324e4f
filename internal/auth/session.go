package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/nikita1503agarwal/devfolio/internal/apperror"
	"github.com/nikita1503agarwal/devfolio/internal/model"
	"github.com/nikita1503agarwal/devfolio/internal/repository"
)

// tokenBytes is the entropy of a session token. 32 bytes → 43 base64url
// characters — comfortably beyond brute force.
const tokenBytes = 32

// SessionService issues and resolves opaque session tokens.
//
// WHY OPAQUE TOKENS AND NOT JWT?
// The session rules here are inherently stateful: one active session per
// username, replaced on re-login, deletable on logout. A signed stateless
// token can't be replaced or revoked without a server-side table — so the
// table IS the session, and the token is just a random handle to its row.
type SessionService struct {
	sessions repository.SessionRepository
	ttl      time.Duration
}

// NewSessionService creates a SessionService. ttl is the absolute session
// lifetime (7 days in the default config).
func NewSessionService(sessions repository.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessions: sessions,
		ttl:      ttl,
	}
}

// Issue mints a fresh token for the username and installs it, replacing any
// session the username already had. The previous token stops working.
func (s *SessionService) Issue(ctx context.Context, username string) (*model.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &model.Session{
		Token:     token,
		Username:  username,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.sessions.Replace(ctx, sess); err != nil {
		return nil, fmt.Errorf("auth: installing session for %s: %w", username, err)
	}

	return sess, nil
}

// Resolve validates a token and returns its session.
//
// Unknown and expired tokens both come back as apperror.ErrUnauthorized —
// callers can't tell the difference, and neither should attackers. An
// expired row is deleted on the way out, so the table cleans itself up as
// stale tokens are presented.
func (s *SessionService) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, apperror.Unauthorized("missing session token")
	}

	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid or expired session token")
		}
		return nil, fmt.Errorf("auth: resolving session: %w", err)
	}

	if sess.Expired(time.Now()) {
		// Lazy cleanup; a delete failure doesn't change the outcome.
		_ = s.sessions.DeleteByToken(ctx, token)
		return nil, apperror.Unauthorized("invalid or expired session token")
	}

	return sess, nil
}

// Revoke deletes the session for the given token. Revoking an unknown
// token succeeds — logout is idempotent.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("auth: revoking session: %w", err)
	}
	return nil
}

// newToken returns tokenBytes of CSPRNG output, base64url-encoded without
// padding. crypto/rand, never math/rand — this is a bearer credential.
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
