// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes to the database
//
// Services accept primitives and domain types, never *http.Request, and
// return domain errors (apperror), never status codes. The handler layer
// translates in both directions.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikita1503agarwal/devfolio/internal/auth"
	"github.com/nikita1503agarwal/devfolio/internal/model"
	"github.com/nikita1503agarwal/devfolio/internal/repository"
)

// AuthService orchestrates the login flow: profile upsert, session
// issuance, and the first-login portfolio seed.
type AuthService struct {
	developers repository.DeveloperRepository
	portfolios repository.PortfolioRepository
	sessions   *auth.SessionService
	logger     *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	developers repository.DeveloperRepository,
	portfolios repository.PortfolioRepository,
	sessions *auth.SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		developers: developers,
		portfolios: portfolios,
		sessions:   sessions,
		logger:     logger,
	}
}

// LoginResult bundles the upserted developer and the issued session token
// so the handler can build the frontend redirect in one step.
type LoginResult struct {
	Developer *model.Developer
	Token     string
}

// LoginWithGitHub completes a login after the handler has exchanged the
// OAuth code for a GitHub profile:
//
//  1. Upsert the developer by username (create on first login, refresh
//     the mirrored profile on every later one)
//  2. Issue a session token, replacing any existing session
//  3. Seed the default portfolio if the developer doesn't have one yet
//
// The three writes are independent upserts against separate tables — there
// is no transaction spanning them. A failure partway through returns an
// error without undoing the earlier writes; the next login repairs any gap
// because every step is idempotent per username.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*LoginResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	dev := &model.Developer{
		Username:        ghUser.Login,
		Name:            ghUser.Name,
		Email:           ghUser.Email,
		AvatarURL:       ghUser.AvatarURL,
		Bio:             ghUser.Bio,
		Company:         ghUser.Company,
		Location:        ghUser.Location,
		Blog:            ghUser.Blog,
		TwitterUsername: ghUser.TwitterUsername,
		HTMLURL:         ghUser.HTMLURL,
		PublicRepos:     ghUser.PublicRepos,
	}

	if err := s.developers.Upsert(ctx, dev); err != nil {
		return nil, fmt.Errorf("service/auth: upserting developer %s: %w", ghUser.Login, err)
	}

	sess, err := s.sessions.Issue(ctx, dev.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing session for %s: %w", dev.Username, err)
	}

	if err := s.portfolios.CreateIfAbsent(ctx, model.NewPortfolio(dev.Username)); err != nil {
		return nil, fmt.Errorf("service/auth: seeding portfolio for %s: %w", dev.Username, err)
	}

	s.logger.Info("developer authenticated via GitHub",
		slog.String("username", dev.Username),
		slog.Time("sessionExpiresAt", sess.ExpiresAt),
	)

	return &LoginResult{
		Developer: dev,
		Token:     sess.Token,
	}, nil
}

// Logout revokes the caller's session. Unknown tokens succeed silently.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return fmt.Errorf("service/auth: logout: %w", err)
	}
	return nil
}
