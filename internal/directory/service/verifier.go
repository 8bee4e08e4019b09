package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/internal/directory/store"
	"github.com/campusops/lostfound/pkg/cryptox"
	"github.com/campusops/lostfound/pkg/slogx"
)

// MaxFailedAttempts is the number of consecutive failed verifications that
// freezes an account. The attempt that reaches the threshold freezes in the
// same transaction as the counter bump.
const MaxFailedAttempts = 3

// CredentialVerifier checks an identifier/secret pair against the directory
// and maintains the failed-attempt lockout counter.
type CredentialVerifier struct {
	Store store.Store
}

// Verify returns the account when the secret matches. Failures are counted
// per account; the third consecutive failure freezes it. A successful
// verification resets the counter. Frozen accounts never verify, even with
// the correct secret.
func (v *CredentialVerifier) Verify(ctx context.Context, identifier, secret string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	account, err := v.Store.Accounts().GetAccountByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}

	if account.Status == domain.StatusFrozen {
		l.Info("verification rejected for frozen account", slog.String("identifier", identifier))
		return domain.Account{}, ErrAccountLocked
	}

	if err := cryptox.VerifyPassword(secret, account.SecretHash); err != nil {
		return domain.Account{}, v.recordFailure(ctx, account.ID, identifier)
	}

	if account.FailedAttempts > 0 {
		if err := v.Store.Accounts().UpdateLockout(ctx, account.ID, 0, domain.StatusActive); err != nil {
			return domain.Account{}, err
		}
		account.FailedAttempts = 0
	}

	return account, nil
}

// recordFailure bumps the failed-attempt counter inside a transaction so the
// re-read, the increment and a threshold freeze land atomically under
// concurrent attempts.
func (v *CredentialVerifier) recordFailure(ctx context.Context, id, identifier string) error {
	l := slogx.FromContext(ctx)

	var verdict error
	err := v.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetAccountByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				verdict = ErrAccountNotFound
				return nil
			}
			return err
		}

		// Another request may have frozen the account since our read.
		if account.Status == domain.StatusFrozen {
			verdict = ErrAccountLocked
			return nil
		}

		attempts := account.FailedAttempts + 1
		status := account.Status
		if attempts >= MaxFailedAttempts {
			status = domain.StatusFrozen
		}

		if err := tx.Accounts().UpdateLockout(ctx, id, attempts, status); err != nil {
			return err
		}

		if status == domain.StatusFrozen {
			l.Warn("account frozen after repeated failures",
				slog.String("identifier", identifier),
				slog.Int("failed_attempts", attempts),
			)
		}

		// The crossing attempt still reports invalid credentials with zero
		// attempts remaining; only subsequent attempts hit the frozen branch.
		verdict = &InvalidCredentialsError{Remaining: max(0, MaxFailedAttempts-attempts)}
		return nil
	})
	if err != nil {
		return err
	}
	return verdict
}
