package service

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 25
	minPasswordLen = 6
)

// RegistrationService coordinates email-gated registration: it writes the
// pending account and hands the verification code to the delivery queue.
type RegistrationService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	queue  ports.DeliveryQueue
	log    zerolog.Logger
}

func NewRegistrationService(repo ports.AccountRepository, hasher ports.PasswordHasher, queue ports.DeliveryQueue, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{repo: repo, hasher: hasher, queue: queue, log: log}
}

// Register validates the input, then creates the account or overwrites an
// abandoned unverified one under the same id. A verified account holding the
// username or email fails the attempt; the caller never learns which field
// collided. Delivery is best-effort: the code is returned regardless.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) (*domain.Account, string, error) {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return nil, "", domain.ErrInvalidInput
	}
	if len(password) < minPasswordLen {
		return nil, "", domain.ErrInvalidInput
	}
	if email == "" {
		return nil, "", domain.ErrInvalidInput
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && err != domain.ErrAccountNotFound {
		return nil, "", err
	}
	if existing != nil && existing.Verified {
		return nil, "", domain.ErrAccountExists
	}

	code, err := generateCode()
	if err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	account := &domain.Account{
		ID:               uuid.NewString(),
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		VerificationCode: code,
	}
	if existing != nil {
		// Overwrite the pending row in place; username and email stay as
		// first registered.
		account.ID = existing.ID
		account.Username = existing.Username
		account.Email = existing.Email
	}

	created, err := s.repo.UpsertPending(ctx, account)
	if err != nil {
		return nil, "", err
	}

	s.queue.Enqueue(ports.Delivery{Email: created.Email, Code: code})

	s.log.Info().
		Str("account_id", created.ID).
		Str("username", created.Username).
		Msg("registration pending verification")

	return created, code, nil
}

// Verify consumes a verification code. The store flips the account to
// verified and clears the code in one atomic step, so concurrent submissions
// of the same code resolve to at most one true.
func (s *RegistrationService) Verify(ctx context.Context, email, code string) (bool, error) {
	ok, err := s.repo.MarkVerified(ctx, email, code)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info().Str("email", email).Msg("account verified")
	}
	return ok, nil
}

// generateCode draws a 6-digit code uniformly from 100000..999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return n.Add(n, big.NewInt(100000)).String(), nil
}
