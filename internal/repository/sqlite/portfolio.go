package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikita1503agarwal/devfolio/internal/apperror"
	"github.com/nikita1503agarwal/devfolio/internal/model"
	"github.com/nikita1503agarwal/devfolio/internal/repository"
)

// compile-time check that *PortfolioRepo implements repository.PortfolioRepository
var _ repository.PortfolioRepository = (*PortfolioRepo)(nil)

// PortfolioRepo stores portfolio documents in the portfolios table.
type PortfolioRepo struct {
	conn *sql.DB
}

// CreateIfAbsent inserts the portfolio only when no row exists for the
// username. ON CONFLICT DO NOTHING gives the "$setOnInsert" semantics the
// login flow needs: first login seeds the defaults, later logins never
// touch the user's edits.
func (r *PortfolioRepo) CreateIfAbsent(ctx context.Context, p *model.Portfolio) error {
	sections, theme, err := marshalPortfolioDocs(p)
	if err != nil {
		return err
	}

	now := time.Now()

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO portfolios (username, headline, subheadline, sections, theme, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO NOTHING`,
		p.Username,
		p.Headline,
		p.Subheadline,
		sections,
		theme,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: seeding portfolio for %s: %w", p.Username, err)
	}

	return nil
}

// GetByUsername retrieves a portfolio by username.
// Returns apperror.ErrNotFound if no portfolio exists for that username.
func (r *PortfolioRepo) GetByUsername(ctx context.Context, username string) (*model.Portfolio, error) {
	var (
		p        model.Portfolio
		sections string
		theme    string
	)

	err := r.conn.QueryRowContext(ctx,
		`SELECT username, headline, subheadline, sections, theme, created_at, updated_at
		 FROM portfolios WHERE username = ?`,
		username,
	).Scan(
		&p.Username,
		&p.Headline,
		&p.Subheadline,
		&sections,
		&theme,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("portfolio", username)
		}
		return nil, fmt.Errorf("sqlite: getting portfolio %s: %w", username, err)
	}

	if err := json.Unmarshal([]byte(sections), &p.Sections); err != nil {
		return nil, fmt.Errorf("sqlite: decoding sections for %s: %w", username, err)
	}
	if err := json.Unmarshal([]byte(theme), &p.Theme); err != nil {
		return nil, fmt.Errorf("sqlite: decoding theme for %s: %w", username, err)
	}

	return &p, nil
}

// Upsert writes the full portfolio document, inserting or overwriting.
func (r *PortfolioRepo) Upsert(ctx context.Context, p *model.Portfolio) error {
	sections, theme, err := marshalPortfolioDocs(p)
	if err != nil {
		return err
	}

	now := time.Now()
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO portfolios (username, headline, subheadline, sections, theme, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
			headline    = excluded.headline,
			subheadline = excluded.subheadline,
			sections    = excluded.sections,
			theme       = excluded.theme,
			updated_at  = excluded.updated_at`,
		p.Username,
		p.Headline,
		p.Subheadline,
		sections,
		theme,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting portfolio %s: %w", p.Username, err)
	}

	return nil
}

// marshalPortfolioDocs serializes the free-form columns. nil slices/maps
// are normalised so the stored JSON is always [] / {} rather than null.
func marshalPortfolioDocs(p *model.Portfolio) (sections, theme string, err error) {
	s := p.Sections
	if s == nil {
		s = []any{}
	}
	sb, err := json.Marshal(s)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding sections for %s: %w", p.Username, err)
	}

	t := p.Theme
	if t == nil {
		t = map[string]any{}
	}
	tb, err := json.Marshal(t)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding theme for %s: %w", p.Username, err)
	}

	return string(sb), string(tb), nil
}
