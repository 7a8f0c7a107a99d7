package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"podium/internal/domain/account"
)

// AccountStore is the account store slice orchestrators use.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// SeedAdminInput carries the bootstrap admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStore
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the bootstrap admin account if it does not
// exist. Idempotent: an existing account with the email is left untouched.
// PRE: Email and Password are non-empty; database schema exists
// POST: An admin account with the email exists
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) error {
	if input.Email == "" || input.Password == "" {
		slog.Info("seed_event", "event", "admin_seed_skipped", "reason", "credentials not configured")
		return nil
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return nil // already exists
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Role:      account.RoleAdmin,
		CreatedAt: now,
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return fmt.Errorf("seed admin: set password: %w", err)
	}
	if err := acct.Validate(); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return fmt.Errorf("seed admin: save: %w", err)
	}

	slog.Info("seed_event", "event", "admin_seeded", "email", input.Email)
	return nil
}
