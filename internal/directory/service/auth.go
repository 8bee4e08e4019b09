package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/internal/directory/store"
	"github.com/campusops/lostfound/pkg/cryptox"
	"github.com/campusops/lostfound/pkg/httpx"
	"github.com/campusops/lostfound/pkg/slogx"
)

// MinSecretLength is the shortest secret accepted when setting a new one.
const MinSecretLength = 6

// AuthService is the front door for login, logout, session introspection and
// self-service secret changes. It composes the credential verifier and the
// in-memory session registry.
type AuthService struct {
	Store    store.Store
	Verifier *CredentialVerifier
	Sessions *SessionRegistry
}

// AccountSummary is the safe-to-expose view of an account. It never carries
// the secret hash.
type AccountSummary struct {
	ID         string      `json:"id"`
	Identifier string      `json:"identifier"`
	RealName   string      `json:"real_name"`
	Phone      string      `json:"phone,omitempty"`
	Role       domain.Role `json:"role"`
	College    string      `json:"college,omitempty"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// LoginResult is what a successful login hands back. ExpiresIn carries the
// token lifetime in seconds alongside the absolute expiry timestamp.
type LoginResult struct {
	Token                 string         `json:"token"`
	ExpiresAt             time.Time      `json:"expires_at"`
	ExpiresIn             int64          `json:"expires_in"`
	Account               AccountSummary `json:"account"`
	RequirePasswordChange bool           `json:"require_password_change"`
}

func summarize(a domain.Account) AccountSummary {
	return AccountSummary{
		ID:         a.ID,
		Identifier: a.Identifier,
		RealName:   a.RealName,
		Phone:      a.Phone,
		Role:       a.Role,
		College:    a.College,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
	}
}

// Login verifies the credentials and issues a session token. When the caller
// is still on the default secret derived from their identifier, the result
// flags that a change is advisable; the flag never blocks anything.
func (s *AuthService) Login(ctx context.Context, identifier, secret string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return LoginResult{}, ErrValidation
	}

	account, err := s.Verifier.Verify(ctx, identifier, secret)
	if err != nil {
		return LoginResult{}, err
	}

	session, err := s.Sessions.Issue(account.ID)
	if err != nil {
		return LoginResult{}, err
	}

	l.Info("login succeeded",
		slog.String("identifier", identifier),
		slog.String("role", string(account.Role)),
		slog.String("token_fp", cryptox.FingerprintToken(session.Token)),
	)

	return LoginResult{
		Token:                 session.Token,
		ExpiresAt:             session.ExpiresAt,
		ExpiresIn:             int64(s.Sessions.TTL().Seconds()),
		Account:               summarize(account),
		RequirePasswordChange: secret == domain.DefaultSecret(identifier),
	}, nil
}

// Logout revokes the session token. Unknown tokens are ignored so logout is
// always safe to call.
func (s *AuthService) Logout(ctx context.Context, token string) {
	l := slogx.FromContext(ctx)
	s.Sessions.Revoke(token)
	l.Info("logout", slog.String("token_fp", cryptox.FingerprintToken(token)))
}

// CurrentUser resolves a session token to its account. A live token whose
// account has since been deleted is revoked on the spot.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (AccountSummary, error) {
	ownerID, err := s.Sessions.ResolveOwner(token)
	if err != nil {
		return AccountSummary{}, err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Sessions.Revoke(token)
			return AccountSummary{}, ErrInvalidToken
		}
		return AccountSummary{}, err
	}

	return summarize(account), nil
}

// RefreshToken swaps a live token for a fresh one with a full TTL. The old
// token stops working immediately.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	session, err := s.Sessions.Refresh(token)
	if err != nil {
		return LoginResult{}, err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, session.OwnerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Sessions.Revoke(session.Token)
			return LoginResult{}, ErrInvalidToken
		}
		return LoginResult{}, err
	}

	l.Info("session refreshed",
		slog.String("identifier", account.Identifier),
		slog.String("token_fp", cryptox.FingerprintToken(session.Token)),
	)

	return LoginResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		ExpiresIn: int64(s.Sessions.TTL().Seconds()),
		Account:   summarize(account),
	}, nil
}

// ChangePassword replaces the account's secret after re-verifying the old
// one. A wrong old secret is ErrSecretMismatch and deliberately does not
// touch the lockout counter; the caller already holds a valid session.
// confirm may be empty, but when given it must equal newSecret.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, oldSecret, newSecret, confirm string) error {
	l := slogx.FromContext(ctx)

	if len(newSecret) < MinSecretLength {
		return ErrValidation
	}
	if confirm != "" && confirm != newSecret {
		return ErrValidation
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if err := cryptox.VerifyPassword(oldSecret, account.SecretHash); err != nil {
		return ErrSecretMismatch
	}

	hash, err := cryptox.HashPassword(newSecret)
	if err != nil {
		return err
	}

	if err := s.Store.Accounts().UpdateSecretHash(ctx, account.ID, hash); err != nil {
		return err
	}

	l.Info("secret changed", slog.String("identifier", account.Identifier))
	return nil
}

// ForceLogout revokes every session the account holds and returns how many
// were dropped.
func (s *AuthService) ForceLogout(ctx context.Context, accountID string) int {
	l := slogx.FromContext(ctx)
	dropped := s.Sessions.RevokeAllFor(accountID)
	l.Info("sessions revoked", slog.String("account_id", accountID), slog.Int("count", dropped))
	return dropped
}

// Permissions returns the permission set of the token's account.
func (s *AuthService) Permissions(ctx context.Context, token string) ([]string, error) {
	summary, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return PermissionsFor(summary.Role), nil
}

// HasPermission reports whether the token's account holds the permission.
func (s *AuthService) HasPermission(ctx context.Context, token, permission string) (bool, error) {
	summary, err := s.CurrentUser(ctx, token)
	if err != nil {
		return false, err
	}
	return HasPermission(summary.Role, permission), nil
}

// Authenticate implements httpx.Authenticator so the HTTP middleware can
// resolve bearer tokens to principals.
func (s *AuthService) Authenticate(ctx context.Context, token string) (httpx.Principal, error) {
	summary, err := s.CurrentUser(ctx, token)
	if err != nil {
		return httpx.Principal{}, err
	}

	return httpx.Principal{
		AccountID:   summary.ID,
		Identifier:  summary.Identifier,
		Role:        string(summary.Role),
		Permissions: PermissionsFor(summary.Role),
	}, nil
}
