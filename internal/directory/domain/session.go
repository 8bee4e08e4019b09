package domain

import "time"

// Session is the server-side record behind an opaque login token. The token
// itself carries no authority beyond being the lookup key; everything else
// lives here.
type Session struct {
	Token     string
	OwnerID   string // Account.ID of the holder
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session's validity window has closed. A
// session whose expiry equals now is already expired.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
