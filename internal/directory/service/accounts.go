package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/internal/directory/store"
	"github.com/campusops/lostfound/pkg/cryptox"
	"github.com/campusops/lostfound/pkg/idx"
	"github.com/campusops/lostfound/pkg/slogx"
)

// AccountService is the administrative surface of the directory: account
// CRUD, batch imports, freezes, secret resets and reporting.
type AccountService struct {
	Store    store.Store
	Sessions *SessionRegistry
}

// CreateAccountInput describes a new directory entry. When Secret is empty
// the account starts on the default secret derived from its identifier.
type CreateAccountInput struct {
	Identifier string      `json:"identifier"`
	Secret     string      `json:"secret,omitempty"`
	RealName   string      `json:"real_name"`
	Phone      string      `json:"phone,omitempty"`
	Role       domain.Role `json:"role"`
	College    string      `json:"college,omitempty"`
}

// UpdateAccountInput carries the mutable profile fields.
type UpdateAccountInput struct {
	RealName string      `json:"real_name"`
	Phone    string      `json:"phone,omitempty"`
	Role     domain.Role `json:"role"`
	College  string      `json:"college,omitempty"`
}

// BatchFailure records why one entry of a batch import was skipped.
type BatchFailure struct {
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

// BatchResult summarises a batch import. Failures never abort the batch.
type BatchResult struct {
	Created  int            `json:"created"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

func (in *CreateAccountInput) validate() error {
	in.Identifier = strings.TrimSpace(in.Identifier)
	in.RealName = strings.TrimSpace(in.RealName)
	if in.Identifier == "" || in.RealName == "" {
		return ErrValidation
	}
	if !in.Role.Valid() {
		return ErrValidation
	}
	if in.Secret != "" && len(in.Secret) < MinSecretLength {
		return ErrValidation
	}
	return nil
}

// Create inserts a new account. Identifiers are unique; a duplicate yields
// ErrIdentifierTaken.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (AccountSummary, error) {
	l := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return AccountSummary{}, err
	}

	secret := in.Secret
	if secret == "" {
		secret = domain.DefaultSecret(in.Identifier)
	}

	hash, err := cryptox.HashPassword(secret)
	if err != nil {
		return AccountSummary{}, err
	}

	account := domain.Account{
		ID:         idx.New().String(),
		Identifier: in.Identifier,
		SecretHash: hash,
		RealName:   in.RealName,
		Phone:      in.Phone,
		Role:       in.Role,
		College:    in.College,
		Status:     domain.StatusActive,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return AccountSummary{}, ErrIdentifierTaken
		}
		return AccountSummary{}, err
	}

	created, err := s.Store.Accounts().GetAccountByID(ctx, account.ID)
	if err != nil {
		return AccountSummary{}, err
	}

	l.Info("account created",
		slog.String("identifier", in.Identifier),
		slog.String("role", string(in.Role)),
	)
	return summarize(created), nil
}

// BatchCreate imports many accounts, skipping invalid or duplicate entries
// instead of aborting. The result reports per-entry failures.
func (s *AccountService) BatchCreate(ctx context.Context, inputs []CreateAccountInput) BatchResult {
	var result BatchResult
	for _, in := range inputs {
		if _, err := s.Create(ctx, in); err != nil {
			result.Failures = append(result.Failures, BatchFailure{
				Identifier: in.Identifier,
				Reason:     err.Error(),
			})
			continue
		}
		result.Created++
	}
	return result
}

// Get returns one account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (AccountSummary, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AccountSummary{}, ErrAccountNotFound
		}
		return AccountSummary{}, err
	}
	return summarize(account), nil
}

// Update overwrites the profile fields of an account.
func (s *AccountService) Update(ctx context.Context, id string, in UpdateAccountInput) (AccountSummary, error) {
	in.RealName = strings.TrimSpace(in.RealName)
	if in.RealName == "" || !in.Role.Valid() {
		return AccountSummary{}, ErrValidation
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AccountSummary{}, ErrAccountNotFound
		}
		return AccountSummary{}, err
	}

	account.RealName = in.RealName
	account.Phone = in.Phone
	account.Role = in.Role
	account.College = in.College

	if err := s.Store.Accounts().UpdateAccount(ctx, account); err != nil {
		return AccountSummary{}, err
	}

	updated, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		return AccountSummary{}, err
	}
	return summarize(updated), nil
}

// Delete removes an account and revokes any sessions it still holds.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.Accounts().DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	dropped := s.Sessions.RevokeAllFor(id)
	l.Info("account deleted", slog.String("account_id", id), slog.Int("sessions_revoked", dropped))
	return nil
}

// SetStatus freezes or unfreezes an account. Unfreezing clears the
// failed-attempt counter so the account gets a clean slate; freezing revokes
// every live session.
func (s *AccountService) SetStatus(ctx context.Context, id string, status domain.Status) (AccountSummary, error) {
	l := slogx.FromContext(ctx)

	if status != domain.StatusActive && status != domain.StatusFrozen {
		return AccountSummary{}, ErrValidation
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AccountSummary{}, ErrAccountNotFound
		}
		return AccountSummary{}, err
	}

	attempts := account.FailedAttempts
	if status == domain.StatusActive {
		attempts = 0
	}

	if err := s.Store.Accounts().UpdateLockout(ctx, id, attempts, status); err != nil {
		return AccountSummary{}, err
	}

	if status == domain.StatusFrozen {
		dropped := s.Sessions.RevokeAllFor(id)
		l.Info("account frozen",
			slog.String("identifier", account.Identifier),
			slog.Int("sessions_revoked", dropped),
		)
	} else {
		l.Info("account unfrozen", slog.String("identifier", account.Identifier))
	}

	updated, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		return AccountSummary{}, err
	}
	return summarize(updated), nil
}

// ResetSecret puts the account back on the default secret derived from its
// identifier and returns that secret so the operator can hand it over.
func (s *AccountService) ResetSecret(ctx context.Context, id string) (string, error) {
	l := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", err
	}

	secret := domain.DefaultSecret(account.Identifier)
	hash, err := cryptox.HashPassword(secret)
	if err != nil {
		return "", err
	}

	if err := s.Store.Accounts().UpdateSecretHash(ctx, id, hash); err != nil {
		return "", err
	}

	l.Info("secret reset to default", slog.String("identifier", account.Identifier))
	return secret, nil
}

// List returns a filtered page of accounts plus the total match count.
func (s *AccountService) List(ctx context.Context, f store.AccountFilter, p store.Page) ([]AccountSummary, int64, error) {
	accounts, total, err := s.Store.Accounts().ListAccounts(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	return summarizeAll(accounts), total, nil
}

// Search matches identifier, real name or college against a keyword.
func (s *AccountService) Search(ctx context.Context, keyword string, limit int) ([]AccountSummary, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrValidation
	}
	if limit <= 0 {
		limit = 50
	}

	accounts, err := s.Store.Accounts().SearchAccounts(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}
	return summarizeAll(accounts), nil
}

// Statistics aggregates directory-wide totals. The high-failure bucket counts
// accounts at or above the lockout threshold.
func (s *AccountService) Statistics(ctx context.Context) (store.Statistics, error) {
	return s.Store.Accounts().Statistics(ctx, MaxFailedAttempts)
}

// Colleges lists the distinct colleges present in the directory.
func (s *AccountService) Colleges(ctx context.Context) ([]string, error) {
	return s.Store.Accounts().DistinctColleges(ctx)
}

// Export returns every account matching the filter, unpaged, for bulk
// extraction.
func (s *AccountService) Export(ctx context.Context, f store.AccountFilter) ([]AccountSummary, error) {
	accounts, _, err := s.Store.Accounts().ListAccounts(ctx, f, store.Page{})
	if err != nil {
		return nil, err
	}
	return summarizeAll(accounts), nil
}

func summarizeAll(accounts []domain.Account) []AccountSummary {
	out := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, summarize(a))
	}
	return out
}
