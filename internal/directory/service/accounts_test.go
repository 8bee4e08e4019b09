package service

import (
	"context"
	"testing"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/internal/directory/store"
	"github.com/stretchr/testify/require"
)

func newAccountService(t *testing.T) (*AccountService, *AuthService) {
	t.Helper()
	st := newTestStore(t)
	sessions := NewSessionRegistry(DefaultSessionTTL)
	accounts := &AccountService{Store: st, Sessions: sessions}
	auth := &AuthService{
		Store:    st,
		Verifier: &CredentialVerifier{Store: st},
		Sessions: sessions,
	}
	return accounts, auth
}

func TestAccountServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit secret", func(t *testing.T) {
		accounts, auth := newAccountService(t)

		summary, err := accounts.Create(ctx, CreateAccountInput{
			Identifier: "20240101",
			Secret:     "chosen-secret",
			RealName:   "Chen Jing",
			Role:       domain.RoleStudent,
			College:    "Physics",
		})
		require.NoError(t, err)
		require.Equal(t, "20240101", summary.Identifier)
		require.Equal(t, "active", summary.Status)

		_, err = auth.Login(ctx, "20240101", "chosen-secret")
		require.NoError(t, err)
	})

	t.Run("omitted secret falls back to the default", func(t *testing.T) {
		accounts, auth := newAccountService(t)

		_, err := accounts.Create(ctx, CreateAccountInput{
			Identifier: "20240102",
			RealName:   "Liu Yang",
			Role:       domain.RoleStudent,
		})
		require.NoError(t, err)

		result, err := auth.Login(ctx, "20240102", "240102")
		require.NoError(t, err)
		require.True(t, result.RequirePasswordChange)
	})

	t.Run("duplicate identifier", func(t *testing.T) {
		accounts, _ := newAccountService(t)

		in := CreateAccountInput{
			Identifier: "20240101",
			RealName:   "Chen Jing",
			Role:       domain.RoleStudent,
		}
		_, err := accounts.Create(ctx, in)
		require.NoError(t, err)

		_, err = accounts.Create(ctx, in)
		require.ErrorIs(t, err, ErrIdentifierTaken)
	})

	t.Run("validation", func(t *testing.T) {
		accounts, _ := newAccountService(t)

		_, err := accounts.Create(ctx, CreateAccountInput{RealName: "No Identifier", Role: domain.RoleStudent})
		require.ErrorIs(t, err, ErrValidation)

		_, err = accounts.Create(ctx, CreateAccountInput{Identifier: "x1", RealName: "Bad Role", Role: domain.Role("janitor")})
		require.ErrorIs(t, err, ErrValidation)

		_, err = accounts.Create(ctx, CreateAccountInput{Identifier: "x1", RealName: "Short Secret", Role: domain.RoleStudent, Secret: "abc"})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestAccountServiceBatchCreate(t *testing.T) {
	ctx := context.Background()
	accounts, _ := newAccountService(t)

	result := accounts.BatchCreate(ctx, []CreateAccountInput{
		{Identifier: "20240101", RealName: "Chen Jing", Role: domain.RoleStudent},
		{Identifier: "20240102", RealName: "Liu Yang", Role: domain.RoleStudent},
		{Identifier: "20240101", RealName: "Duplicate", Role: domain.RoleStudent},
		{Identifier: "", RealName: "No Identifier", Role: domain.RoleStudent},
	})

	require.Equal(t, 2, result.Created)
	require.Len(t, result.Failures, 2)
	require.Equal(t, "20240101", result.Failures[0].Identifier)

	_, total, err := accounts.List(ctx, store.AccountFilter{}, store.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}

func TestAccountServiceUpdate(t *testing.T) {
	ctx := context.Background()
	accounts, _ := newAccountService(t)

	created, err := accounts.Create(ctx, CreateAccountInput{
		Identifier: "T2001",
		RealName:   "Zhao Lei",
		Role:       domain.RoleStaff,
		College:    "Library",
	})
	require.NoError(t, err)

	updated, err := accounts.Update(ctx, created.ID, UpdateAccountInput{
		RealName: "Zhao Lei",
		Phone:    "13900000001",
		Role:     domain.RoleAdmin,
		College:  "Administration",
	})
	require.NoError(t, err)
	require.Equal(t, "13900000001", updated.Phone)
	require.Equal(t, domain.RoleAdmin, updated.Role)
	require.Equal(t, "Administration", updated.College)

	_, err = accounts.Update(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", UpdateAccountInput{RealName: "Ghost", Role: domain.RoleStudent})
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountServiceDelete(t *testing.T) {
	ctx := context.Background()
	accounts, auth := newAccountService(t)

	created, err := accounts.Create(ctx, CreateAccountInput{
		Identifier: "20240101",
		Secret:     "hunter42",
		RealName:   "Chen Jing",
		Role:       domain.RoleStudent,
	})
	require.NoError(t, err)

	login, err := auth.Login(ctx, "20240101", "hunter42")
	require.NoError(t, err)

	require.NoError(t, accounts.Delete(ctx, created.ID))

	// Sessions die with the account.
	_, err = auth.CurrentUser(ctx, login.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	require.ErrorIs(t, accounts.Delete(ctx, created.ID), ErrAccountNotFound)
}

func TestAccountServiceSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("freeze revokes sessions", func(t *testing.T) {
		accounts, auth := newAccountService(t)

		created, err := accounts.Create(ctx, CreateAccountInput{
			Identifier: "20240101",
			Secret:     "hunter42",
			RealName:   "Chen Jing",
			Role:       domain.RoleStudent,
		})
		require.NoError(t, err)

		login, err := auth.Login(ctx, "20240101", "hunter42")
		require.NoError(t, err)

		frozen, err := accounts.SetStatus(ctx, created.ID, domain.StatusFrozen)
		require.NoError(t, err)
		require.Equal(t, "frozen", frozen.Status)

		_, err = auth.CurrentUser(ctx, login.Token)
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = auth.Login(ctx, "20240101", "hunter42")
		require.ErrorIs(t, err, ErrAccountLocked)
	})

	t.Run("unfreeze clears the counter", func(t *testing.T) {
		accounts, auth := newAccountService(t)

		created, err := accounts.Create(ctx, CreateAccountInput{
			Identifier: "20240101",
			Secret:     "hunter42",
			RealName:   "Chen Jing",
			Role:       domain.RoleStudent,
		})
		require.NoError(t, err)

		// Lock the account the honest way.
		for range 3 {
			_, _ = auth.Login(ctx, "20240101", "wrong")
		}
		_, err = auth.Login(ctx, "20240101", "hunter42")
		require.ErrorIs(t, err, ErrAccountLocked)

		_, err = accounts.SetStatus(ctx, created.ID, domain.StatusActive)
		require.NoError(t, err)

		account, err := accounts.Store.Accounts().GetAccountByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, 0, account.FailedAttempts)

		_, err = auth.Login(ctx, "20240101", "hunter42")
		require.NoError(t, err)
	})

	t.Run("invalid status", func(t *testing.T) {
		accounts, _ := newAccountService(t)
		_, err := accounts.SetStatus(ctx, "whatever", domain.Status("limbo"))
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestAccountServiceResetSecret(t *testing.T) {
	ctx := context.Background()
	accounts, auth := newAccountService(t)

	created, err := accounts.Create(ctx, CreateAccountInput{
		Identifier: "20240101",
		Secret:     "forgotten-by-user",
		RealName:   "Chen Jing",
		Role:       domain.RoleStudent,
	})
	require.NoError(t, err)

	secret, err := accounts.ResetSecret(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "240101", secret)

	result, err := auth.Login(ctx, "20240101", secret)
	require.NoError(t, err)
	require.True(t, result.RequirePasswordChange)

	_, err = accounts.ResetSecret(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountServiceListSearchStats(t *testing.T) {
	ctx := context.Background()
	accounts, _ := newAccountService(t)

	seed := []CreateAccountInput{
		{Identifier: "20240101", RealName: "Chen Jing", Role: domain.RoleStudent, College: "Physics"},
		{Identifier: "20240102", RealName: "Liu Yang", Role: domain.RoleStudent, College: "Physics"},
		{Identifier: "T2001", RealName: "Zhao Lei", Role: domain.RoleStaff, College: "Library"},
		{Identifier: "admin001", RealName: "Root", Role: domain.RoleAdmin},
	}
	for _, in := range seed {
		_, err := accounts.Create(ctx, in)
		require.NoError(t, err)
	}

	t.Run("list with filter and paging", func(t *testing.T) {
		page, total, err := accounts.List(ctx, store.AccountFilter{Role: domain.RoleStudent}, store.Page{Limit: 1})
		require.NoError(t, err)
		require.EqualValues(t, 2, total)
		require.Len(t, page, 1)

		byCollege, total, err := accounts.List(ctx, store.AccountFilter{College: "Library"}, store.Page{})
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		require.Equal(t, "T2001", byCollege[0].Identifier)
	})

	t.Run("search", func(t *testing.T) {
		hits, err := accounts.Search(ctx, "Zhao", 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		require.Equal(t, "T2001", hits[0].Identifier)

		_, err = accounts.Search(ctx, "   ", 10)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("statistics", func(t *testing.T) {
		stats, err := accounts.Statistics(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 4, stats.Total)
		require.EqualValues(t, 4, stats.Active)
		require.EqualValues(t, 0, stats.Frozen)
		require.EqualValues(t, 2, stats.ByRole[domain.RoleStudent])
		require.EqualValues(t, 2, stats.ByCollege["Physics"])
	})

	t.Run("colleges", func(t *testing.T) {
		colleges, err := accounts.Colleges(ctx)
		require.NoError(t, err)
		require.Contains(t, colleges, "Physics")
		require.Contains(t, colleges, "Library")
	})

	t.Run("export", func(t *testing.T) {
		all, err := accounts.Export(ctx, store.AccountFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
	})
}
