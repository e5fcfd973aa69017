package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"clubportal/internal/domain/account"

	"github.com/google/uuid"
)

// AccountStoreForSeed defines the store interface needed by SeedSuperAdmin.
type AccountStoreForSeed interface {
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// SeedSuperAdminDeps holds dependencies for SeedSuperAdmin.
type SeedSuperAdminDeps struct {
	AccountStore AccountStoreForSeed
}

// ExecuteSeedSuperAdmin creates the first General Secretary account if no
// accounts exist yet. Idempotent across restarts.
// PRE: Database is initialized
// POST: super_admin account created iff count == 0
func ExecuteSeedSuperAdmin(ctx context.Context, deps SeedSuperAdminDeps, email, password, fullName string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     email,
		FullName:  fullName,
		Role:      account.RoleSuperAdmin,
		CreatedAt: time.Now(),
		// The seeded password comes from config; force a change on first login.
		PasswordChangeRequired: true,
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	if err := acct.SetPassword(password); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "super_admin_seeded", "email", email)
	return nil
}
