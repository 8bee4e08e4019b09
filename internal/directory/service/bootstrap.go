package service

import (
	"context"
	"log/slog"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/internal/directory/store"
	"github.com/campusops/lostfound/pkg/cryptox"
	"github.com/campusops/lostfound/pkg/idx"
	"github.com/campusops/lostfound/pkg/slogx"
)

// BootstrapService seeds an empty directory with a known set of accounts so
// a fresh deployment is immediately usable. Every seeded account starts on
// the default secret derived from its identifier.
type BootstrapService struct {
	Store store.Store
}

type seedAccount struct {
	Identifier string
	RealName   string
	Phone      string
	Role       domain.Role
	College    string
}

var seedAccounts = []seedAccount{
	{Identifier: "admin001", RealName: "System Administrator", Role: domain.RoleAdmin},
	{Identifier: "T1001", RealName: "Li Hua", Phone: "13800000001", Role: domain.RoleStaff, College: "Student Affairs"},
	{Identifier: "20230001", RealName: "Zhang Wei", Phone: "13800000002", Role: domain.RoleStudent, College: "Computer Science"},
	{Identifier: "20230002", RealName: "Wang Fang", Phone: "13800000003", Role: domain.RoleStudent, College: "Mathematics"},
}

// SeedIfEmpty populates the directory when it holds no accounts at all.
// Returns how many accounts were created; zero means the directory was
// already populated.
func (s *BootstrapService) SeedIfEmpty(ctx context.Context) (int, error) {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Accounts().IsEmpty(ctx)
	if err != nil {
		return 0, err
	}
	if !empty {
		return 0, nil
	}

	var created int
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, seed := range seedAccounts {
			hash, err := cryptox.HashPassword(domain.DefaultSecret(seed.Identifier))
			if err != nil {
				return err
			}

			account := domain.Account{
				ID:         idx.New().String(),
				Identifier: seed.Identifier,
				SecretHash: hash,
				RealName:   seed.RealName,
				Phone:      seed.Phone,
				Role:       seed.Role,
				College:    seed.College,
				Status:     domain.StatusActive,
			}
			if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
				l.Error("failed to seed account",
					slog.String("identifier", seed.Identifier),
					slog.Any("error", err),
				)
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.Info("seeded empty directory", slog.Int("accounts", created))
	return created, nil
}
