package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/internal/directory/store"
	"github.com/campusops/lostfound/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func testAccount(identifier string, role domain.Role) domain.Account {
	return domain.Account{
		ID:         idx.New().String(),
		Identifier: identifier,
		SecretHash: "$argon2id$fake",
		RealName:   "Test Person",
		Phone:      "13800000000",
		Role:       role,
		College:    "Engineering",
		Status:     domain.StatusActive,
	}
}

func TestAccountsCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	repo := st.Accounts()

	account := testAccount("20230001", domain.RoleStudent)
	require.NoError(t, repo.CreateAccount(ctx, account))

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, account.Identifier, got.Identifier)
		require.Equal(t, domain.RoleStudent, got.Role)
		require.Equal(t, domain.StatusActive, got.Status)
		require.False(t, got.CreatedAt.IsZero())
	})

	t.Run("get by identifier", func(t *testing.T) {
		got, err := repo.GetAccountByIdentifier(ctx, "20230001")
		require.NoError(t, err)
		require.Equal(t, account.ID, got.ID)
	})

	t.Run("not found maps cleanly", func(t *testing.T) {
		_, err := repo.GetAccountByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = repo.GetAccountByIdentifier(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("exists by identifier", func(t *testing.T) {
		exists, err := repo.ExistsByIdentifier(ctx, "20230001")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = repo.ExistsByIdentifier(ctx, "missing")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("duplicate identifier is rejected", func(t *testing.T) {
		dup := testAccount("20230001", domain.RoleStudent)
		err := repo.CreateAccount(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update profile fields", func(t *testing.T) {
		got, err := repo.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)

		got.RealName = "Renamed Person"
		got.Role = domain.RoleStaff
		got.College = "Library"
		require.NoError(t, repo.UpdateAccount(ctx, got))

		updated, err := repo.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, "Renamed Person", updated.RealName)
		require.Equal(t, domain.RoleStaff, updated.Role)
		require.Equal(t, "Library", updated.College)
		require.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})

	t.Run("update lockout", func(t *testing.T) {
		require.NoError(t, repo.UpdateLockout(ctx, account.ID, 3, domain.StatusFrozen))

		got, err := repo.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, 3, got.FailedAttempts)
		require.Equal(t, domain.StatusFrozen, got.Status)

		require.NoError(t, repo.UpdateLockout(ctx, account.ID, 0, domain.StatusActive))
	})

	t.Run("update secret hash", func(t *testing.T) {
		require.NoError(t, repo.UpdateSecretHash(ctx, account.ID, "$argon2id$other"))

		got, err := repo.GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, "$argon2id$other", got.SecretHash)
	})

	t.Run("writes against missing rows report not found", func(t *testing.T) {
		require.ErrorIs(t, repo.UpdateLockout(ctx, "missing", 1, domain.StatusActive), store.ErrNotFound)
		require.ErrorIs(t, repo.UpdateSecretHash(ctx, "missing", "x"), store.ErrNotFound)
		require.ErrorIs(t, repo.DeleteAccount(ctx, "missing"), store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteAccount(ctx, account.ID))
		_, err := repo.GetAccountByID(ctx, account.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAccountsListAndSearch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	repo := st.Accounts()

	seed := []domain.Account{
		testAccount("20230001", domain.RoleStudent),
		testAccount("20230002", domain.RoleStudent),
		testAccount("T1001", domain.RoleStaff),
		testAccount("admin001", domain.RoleAdmin),
	}
	seed[0].College = "Physics"
	seed[1].College = "Physics"
	seed[2].College = "Library"
	seed[3].College = ""
	seed[2].RealName = "Zhao 100% Sure"

	for _, a := range seed {
		require.NoError(t, repo.CreateAccount(ctx, a))
	}

	t.Run("unfiltered list returns everything", func(t *testing.T) {
		accounts, total, err := repo.ListAccounts(ctx, store.AccountFilter{}, store.Page{})
		require.NoError(t, err)
		require.EqualValues(t, 4, total)
		require.Len(t, accounts, 4)
	})

	t.Run("filter by role", func(t *testing.T) {
		accounts, total, err := repo.ListAccounts(ctx, store.AccountFilter{Role: domain.RoleStudent}, store.Page{})
		require.NoError(t, err)
		require.EqualValues(t, 2, total)
		require.Len(t, accounts, 2)
	})

	t.Run("filter by college", func(t *testing.T) {
		accounts, total, err := repo.ListAccounts(ctx, store.AccountFilter{College: "Library"}, store.Page{})
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		require.Equal(t, "T1001", accounts[0].Identifier)
	})

	t.Run("identifier filter is a substring match", func(t *testing.T) {
		accounts, total, err := repo.ListAccounts(ctx, store.AccountFilter{Identifier: "2023"}, store.Page{})
		require.NoError(t, err)
		require.EqualValues(t, 2, total)
		require.Len(t, accounts, 2)
	})

	t.Run("paging keeps the full total", func(t *testing.T) {
		accounts, total, err := repo.ListAccounts(ctx, store.AccountFilter{}, store.Page{Limit: 2})
		require.NoError(t, err)
		require.EqualValues(t, 4, total)
		require.Len(t, accounts, 2)

		rest, _, err := repo.ListAccounts(ctx, store.AccountFilter{}, store.Page{Offset: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, rest, 2)
		require.NotEqual(t, accounts[0].ID, rest[0].ID)
	})

	t.Run("search matches identifier, name and college", func(t *testing.T) {
		byIdentifier, err := repo.SearchAccounts(ctx, "admin00", 10)
		require.NoError(t, err)
		require.Len(t, byIdentifier, 1)

		byCollege, err := repo.SearchAccounts(ctx, "Physic", 10)
		require.NoError(t, err)
		require.Len(t, byCollege, 2)
	})

	t.Run("search escapes LIKE wildcards", func(t *testing.T) {
		hits, err := repo.SearchAccounts(ctx, "100%", 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		require.Equal(t, "T1001", hits[0].Identifier)

		none, err := repo.SearchAccounts(ctx, "%", 10)
		require.NoError(t, err)
		require.Len(t, none, 1) // only the literal percent in Zhao's name
	})

	t.Run("search honours the limit", func(t *testing.T) {
		hits, err := repo.SearchAccounts(ctx, "0", 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
	})
}

func TestAccountsStatistics(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	repo := st.Accounts()

	t.Run("empty directory", func(t *testing.T) {
		empty, err := repo.IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)

		stats, err := repo.Statistics(ctx, 3)
		require.NoError(t, err)
		require.EqualValues(t, 0, stats.Total)
	})

	a := testAccount("20230001", domain.RoleStudent)
	a.College = "Physics"
	b := testAccount("20230002", domain.RoleStudent)
	b.College = "Physics"
	c := testAccount("T1001", domain.RoleStaff)
	c.College = "Library"
	c.Status = domain.StatusFrozen
	c.FailedAttempts = 3

	for _, acc := range []domain.Account{a, b, c} {
		require.NoError(t, repo.CreateAccount(ctx, acc))
	}

	t.Run("aggregates", func(t *testing.T) {
		stats, err := repo.Statistics(ctx, 3)
		require.NoError(t, err)
		require.EqualValues(t, 3, stats.Total)
		require.EqualValues(t, 2, stats.Active)
		require.EqualValues(t, 1, stats.Frozen)
		require.EqualValues(t, 1, stats.HighFailure)
		require.EqualValues(t, 2, stats.ByRole[domain.RoleStudent])
		require.EqualValues(t, 1, stats.ByRole[domain.RoleStaff])
		require.EqualValues(t, 2, stats.ByCollege["Physics"])
		require.EqualValues(t, 1, stats.ByCollege["Library"])
	})

	t.Run("distinct colleges are sorted", func(t *testing.T) {
		colleges, err := repo.DistinctColleges(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"Library", "Physics"}, colleges)
	})

	t.Run("no longer empty", func(t *testing.T) {
		empty, err := repo.IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})
}

func TestStoreTransactions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	t.Run("commit persists", func(t *testing.T) {
		account := testAccount("20230001", domain.RoleStudent)
		err := st.WithTx(ctx, func(tx store.Tx) error {
			return tx.Accounts().CreateAccount(ctx, account)
		})
		require.NoError(t, err)

		_, err = st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
	})

	t.Run("error rolls back", func(t *testing.T) {
		account := testAccount("20230099", domain.RoleStudent)
		sentinel := errors.New("boom")

		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
				return err
			}
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		_, err = st.Accounts().GetAccountByID(ctx, account.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("read-modify-write stays atomic", func(t *testing.T) {
		account := testAccount("20230100", domain.RoleStudent)
		require.NoError(t, st.Accounts().CreateAccount(ctx, account))

		err := st.WithTx(ctx, func(tx store.Tx) error {
			got, err := tx.Accounts().GetAccountByID(ctx, account.ID)
			if err != nil {
				return err
			}
			return tx.Accounts().UpdateLockout(ctx, got.ID, got.FailedAttempts+1, got.Status)
		})
		require.NoError(t, err)

		got, err := st.Accounts().GetAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.Equal(t, 1, got.FailedAttempts)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, st.Ping(ctx))
	})
}
