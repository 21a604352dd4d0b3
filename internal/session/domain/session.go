package domain

import "time"

// Session is a durable login session. ID is the SHA-256 hex of the cookie token.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Live reports whether the session is still valid at now.
func (s *Session) Live(now time.Time) bool {
	return s != nil && s.ExpiresAt.After(now)
}
