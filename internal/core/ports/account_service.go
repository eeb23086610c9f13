package ports

import (
	"context"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
)

// RegistrationService starts and completes email-gated registrations.
type RegistrationService interface {
	// Register validates the input, writes a pending account and dispatches
	// the verification code. The code is also returned so callers do not
	// depend on the delivery channel.
	Register(ctx context.Context, username, email, password string) (*domain.Account, string, error)
	// Verify consumes a verification code. At most one call per issued code
	// observes true.
	Verify(ctx context.Context, email, code string) (bool, error)
}

// AuthService authenticates credentials and serves authenticated reads.
type AuthService interface {
	Login(ctx context.Context, usernameOrEmail, password string) (string, *domain.Account, error)
	Profile(ctx context.Context, id string) (*domain.Account, error)
	Status(ctx context.Context, email string) (exists, verified bool, err error)
}

// PasswordService changes a password after re-authenticating the current one.
type PasswordService interface {
	Change(ctx context.Context, accountID, currentPassword, newPassword string) error
}
