package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikita1503agarwal/devfolio/internal/apperror"
	"github.com/nikita1503agarwal/devfolio/internal/model"
	"github.com/nikita1503agarwal/devfolio/internal/repository"
)

// Validation constants.
const (
	MaxHeadlineLength    = 200
	MaxSubheadlineLength = 300
	MaxSections          = 50
)

// PortfolioPatch is a merge-patch against a portfolio document.
//
// Pointer and reference fields distinguish "absent" from "set": a nil field
// leaves the stored value untouched, a non-nil field overwrites it. That's
// what lets a client update just the headline without resending its
// sections.
type PortfolioPatch struct {
	Headline    *string        `json:"headline"`
	Subheadline *string        `json:"subheadline"`
	Sections    []any          `json:"sections"`
	Theme       map[string]any `json:"theme"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *PortfolioPatch) IsEmpty() bool {
	return p.Headline == nil && p.Subheadline == nil && p.Sections == nil && p.Theme == nil
}

// PortfolioService handles portfolio reads and merge-patch updates.
type PortfolioService struct {
	portfolios repository.PortfolioRepository
	logger     *slog.Logger
}

// NewPortfolioService creates a PortfolioService.
func NewPortfolioService(portfolios repository.PortfolioRepository, logger *slog.Logger) *PortfolioService {
	return &PortfolioService{
		portfolios: portfolios,
		logger:     logger,
	}
}

// Get retrieves a portfolio by username. Portfolios are public — no auth
// involved. Returns apperror.ErrNotFound if none exists.
func (s *PortfolioService) Get(ctx context.Context, username string) (*model.Portfolio, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	return s.portfolios.GetByUsername(ctx, username)
}

// Apply merge-patches the portfolio owned by username.
//
// Fetch-then-upsert: load the current document (or start from the defaults
// when the row is missing — the seed write in the login flow is not
// transactional with the rest, so a gap is possible), overlay the non-nil
// patch fields, write the whole document back.
//
// Returns false when the patch is empty — nothing is written in that case.
func (s *PortfolioService) Apply(ctx context.Context, username string, patch *PortfolioPatch) (bool, error) {
	if patch == nil || patch.IsEmpty() {
		return false, nil
	}

	if err := validatePatch(patch); err != nil {
		return false, err
	}

	p, err := s.portfolios.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return false, fmt.Errorf("service/portfolio: loading portfolio %s: %w", username, err)
		}
		p = model.NewPortfolio(username)
	}

	if patch.Headline != nil {
		p.Headline = strings.TrimSpace(*patch.Headline)
	}
	if patch.Subheadline != nil {
		p.Subheadline = strings.TrimSpace(*patch.Subheadline)
	}
	if patch.Sections != nil {
		p.Sections = patch.Sections
	}
	if patch.Theme != nil {
		p.Theme = patch.Theme
	}

	if err := s.portfolios.Upsert(ctx, p); err != nil {
		return false, fmt.Errorf("service/portfolio: saving portfolio %s: %w", username, err)
	}

	s.logger.Info("portfolio updated",
		slog.String("username", username),
		slog.Int("sections", len(p.Sections)),
	)

	return true, nil
}

func validatePatch(patch *PortfolioPatch) error {
	if patch.Headline != nil && len(*patch.Headline) > MaxHeadlineLength {
		return apperror.ValidationFailed("headline",
			fmt.Sprintf("headline must be %d characters or less", MaxHeadlineLength))
	}
	if patch.Subheadline != nil && len(*patch.Subheadline) > MaxSubheadlineLength {
		return apperror.ValidationFailed("subheadline",
			fmt.Sprintf("subheadline must be %d characters or less", MaxSubheadlineLength))
	}
	if len(patch.Sections) > MaxSections {
		return apperror.ValidationFailed("sections",
			fmt.Sprintf("a portfolio can have at most %d sections", MaxSections))
	}
	return nil
}
