package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nikita1503agarwal/devfolio/internal/apperror"
	"github.com/nikita1503agarwal/devfolio/internal/model"
)

func newTestSession(username, token string) *model.Session {
	return &model.Session{
		Token:     token,
		Username:  username,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSessionReplaceAndGet(t *testing.T) {
	repo := newTestDB(t).Sessions()

	sess := newTestSession("octocat", "token-one")
	if err := repo.Replace(context.Background(), sess); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := repo.GetByToken(context.Background(), "token-one")
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if got.Username != "octocat" {
		t.Errorf("Username = %q, want %q", got.Username, "octocat")
	}
	if got.CreatedAt.IsZero() {
		t.Error("Replace() did not set CreatedAt")
	}
}

func TestSessionReplaceInvalidatesPrevious(t *testing.T) {
	repo := newTestDB(t).Sessions()

	if err := repo.Replace(context.Background(), newTestSession("octocat", "old-token")); err != nil {
		t.Fatalf("first Replace() error = %v", err)
	}
	if err := repo.Replace(context.Background(), newTestSession("octocat", "new-token")); err != nil {
		t.Fatalf("second Replace() error = %v", err)
	}

	// One active session per username: the old token must be gone.
	if _, err := repo.GetByToken(context.Background(), "old-token"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("old token lookup error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByToken(context.Background(), "new-token"); err != nil {
		t.Errorf("new token lookup error = %v", err)
	}
}

func TestSessionReplaceLeavesOtherUsersAlone(t *testing.T) {
	repo := newTestDB(t).Sessions()

	if err := repo.Replace(context.Background(), newTestSession("octocat", "octocat-token")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if err := repo.Replace(context.Background(), newTestSession("hubot", "hubot-token")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if _, err := repo.GetByToken(context.Background(), "octocat-token"); err != nil {
		t.Errorf("octocat session disappeared: %v", err)
	}
}

func TestSessionGetByTokenUnknown(t *testing.T) {
	repo := newTestDB(t).Sessions()

	_, err := repo.GetByToken(context.Background(), "never-issued")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSessionDeleteByToken(t *testing.T) {
	repo := newTestDB(t).Sessions()

	if err := repo.Replace(context.Background(), newTestSession("octocat", "tok")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if err := repo.DeleteByToken(context.Background(), "tok"); err != nil {
		t.Fatalf("DeleteByToken() error = %v", err)
	}
	if _, err := repo.GetByToken(context.Background(), "tok"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("deleted token lookup error = %v, want ErrNotFound", err)
	}

	// Idempotent: deleting again is not an error.
	if err := repo.DeleteByToken(context.Background(), "tok"); err != nil {
		t.Errorf("second DeleteByToken() error = %v", err)
	}
}
