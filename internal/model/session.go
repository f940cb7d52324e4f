package model

import "time"

// Session is an opaque bearer token with an absolute expiry.
//
// The token itself carries no information — it's 32 bytes of randomness.
// Everything about the session (who it belongs to, when it expires) lives
// server-side in this row, which is what makes sessions revocable: deleting
// the row logs the user out everywhere, immediately.
//
// One active session per username: logging in again replaces the old row,
// so the previous token stops working.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
