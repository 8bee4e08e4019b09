package store

import (
	"context"
	"errors"

	"github.com/campusops/lostfound/internal/directory/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories are exposed as methods so a Tx-scoped
// store can hand out repositories bound to the same transaction.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. Use it for read-modify-write steps
	// that must be atomic, like bumping the failed-attempt counter.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// AccountFilter narrows ListAccounts. Zero-valued fields are ignored.
type AccountFilter struct {
	Identifier string
	RealName   string
	Role       domain.Role
	Status     domain.Status
	College    string
}

// Page bounds a listing. A Limit of zero or less means unbounded.
type Page struct {
	Offset int
	Limit  int
}

// Statistics is an aggregate snapshot of the directory.
type Statistics struct {
	Total       int64
	Active      int64
	Frozen      int64
	ByRole      map[domain.Role]int64
	ByCollege   map[string]int64
	HighFailure int64 // accounts at or above the lockout threshold
}

type Accounts interface {
	// GetAccountByID returns an account by its ULID.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByIdentifier is the login-path lookup.
	GetAccountByIdentifier(ctx context.Context, identifier string) (domain.Account, error)

	// ExistsByIdentifier reports whether an identifier is already taken.
	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)

	// CreateAccount inserts a new account (id is provided by the app via ULID).
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateAccount overwrites the mutable profile fields (real_name, phone,
	// role, college, status) and bumps updated_at.
	UpdateAccount(ctx context.Context, a domain.Account) error

	// UpdateLockout persists failed_attempts and status in one statement so
	// the freeze that crosses the threshold lands with the increment.
	UpdateLockout(ctx context.Context, id string, failedAttempts int, status domain.Status) error

	// UpdateSecretHash sets the secret_hash and bumps updated_at.
	UpdateSecretHash(ctx context.Context, id string, newHash string) error

	// DeleteAccount removes the row.
	DeleteAccount(ctx context.Context, id string) error

	// ListAccounts returns a filtered page plus the total match count.
	ListAccounts(ctx context.Context, f AccountFilter, p Page) ([]domain.Account, int64, error)

	// SearchAccounts matches identifier, real name or college against a keyword.
	SearchAccounts(ctx context.Context, keyword string, limit int) ([]domain.Account, error)

	// Statistics aggregates totals, status/role/college distribution and the
	// number of accounts whose failed_attempts is at or above failureThreshold.
	Statistics(ctx context.Context, failureThreshold int) (Statistics, error)

	// DistinctColleges lists the colleges present in the directory.
	DistinctColleges(ctx context.Context) ([]string, error)

	// IsEmpty reports whether the directory holds no accounts (seed check).
	IsEmpty(ctx context.Context) (bool, error)
}
