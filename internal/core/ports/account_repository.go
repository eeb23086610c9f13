package ports

import (
	"context"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
)

// AccountRepository defines the interface for account persistence.
//
// Every method executes as a single storage transaction; implementations
// retry transient infrastructure faults once before surfacing
// domain.ErrStorageUnavailable.
type AccountRepository interface {
	// FindByUsernameOrEmail returns the account matching either field.
	// Login lookups pass the same key for both.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)

	// UpsertPending creates the account, or overwrites the password hash and
	// verification code in place when the id already exists unverified.
	// A unique-index collision surfaces as domain.ErrAccountExists.
	UpsertPending(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// MarkVerified flips the account to verified and clears its code, but
	// only when the stored code for that email equals code. Returns false
	// without mutating on mismatch or absent account.
	MarkVerified(ctx context.Context, email, code string) (bool, error)

	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
