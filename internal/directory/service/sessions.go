package service

import (
	"sync"
	"time"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/pkg/cryptox"
)

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// SessionRegistry holds issued session tokens in memory. Sessions do not
// survive a restart; every lookup checks expiry, and a background sweep
// reclaims tokens nobody touches again.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	ttl      time.Duration

	// now is swappable in tests to control expiry.
	now func() time.Time
}

// NewSessionRegistry creates a registry with the given TTL. A zero or
// negative TTL falls back to DefaultSessionTTL.
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRegistry{
		sessions: make(map[string]domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the configured session lifetime.
func (r *SessionRegistry) TTL() time.Duration {
	return r.ttl
}

// Issue creates a fresh opaque token bound to the owner and records it.
func (r *SessionRegistry) Issue(ownerID string) (domain.Session, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, err
	}

	now := r.now()
	session := domain.Session{
		Token:     token,
		OwnerID:   ownerID,
		IssuedAt:  now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.sessions[token] = session
	r.mu.Unlock()

	return session, nil
}

// Validate returns the live session for a token, or ErrInvalidToken when the
// token was never issued, was revoked, or has expired. Expired entries are
// removed on sight.
func (r *SessionRegistry) Validate(token string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveLocked(token)
}

// ResolveOwner returns the account ID a live token belongs to.
func (r *SessionRegistry) ResolveOwner(token string) (string, error) {
	session, err := r.Validate(token)
	if err != nil {
		return "", err
	}
	return session.OwnerID, nil
}

// Refresh revokes the old token and issues a new one for the same owner.
// The old token stops working even if the new issue fails.
func (r *SessionRegistry) Refresh(token string) (domain.Session, error) {
	r.mu.Lock()
	session, err := r.liveLocked(token)
	if err != nil {
		r.mu.Unlock()
		return domain.Session{}, err
	}
	delete(r.sessions, token)
	r.mu.Unlock()

	return r.Issue(session.OwnerID)
}

// Revoke removes a token. Revoking an unknown token is a no-op.
func (r *SessionRegistry) Revoke(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// RevokeAllFor removes every session belonging to the owner and returns how
// many were dropped.
func (r *SessionRegistry) RevokeAllFor(ownerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dropped int
	for token, session := range r.sessions {
		if session.OwnerID == ownerID {
			delete(r.sessions, token)
			dropped++
		}
	}
	return dropped
}

// SweepExpired removes every expired session and returns how many were
// reclaimed. Called periodically by the housekeeping worker.
func (r *SessionRegistry) SweepExpired() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var swept int
	for token, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, token)
			swept++
		}
	}
	return swept
}

// Len reports the number of sessions currently held, live or not yet swept.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// liveLocked looks up a token and evicts it if expired. Caller holds mu.
func (r *SessionRegistry) liveLocked(token string) (domain.Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return domain.Session{}, ErrInvalidToken
	}
	if session.Expired(r.now()) {
		delete(r.sessions, token)
		return domain.Session{}, ErrInvalidToken
	}
	return session, nil
}
