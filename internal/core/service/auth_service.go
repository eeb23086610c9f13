package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
)

// AuthService authenticates credentials and issues session tokens.
type AuthService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	codec  ports.TokenCodec
	log    zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, hasher ports.PasswordHasher, codec ports.TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, codec: codec, log: log}
}

// Authenticate checks credentials and verification state. The three denial
// reasons stay distinct here for logging and tests; the transport layer
// collapses them into one message to prevent account enumeration.
func (s *AuthService) Authenticate(ctx context.Context, usernameOrEmail, password string) (*domain.Account, error) {
	account, err := s.repo.FindByUsernameOrEmail(ctx, usernameOrEmail, usernameOrEmail)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.Verified {
		return nil, domain.ErrNotVerified
	}
	return account, nil
}

// Login authenticates and issues a session token for the account.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (string, *domain.Account, error) {
	account, err := s.Authenticate(ctx, usernameOrEmail, password)
	if err != nil {
		s.log.Debug().Err(err).Str("login", usernameOrEmail).Msg("login denied")
		return "", nil, err
	}

	token, err := s.codec.Issue(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Profile loads the account behind an authenticated session.
func (s *AuthService) Profile(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// Status reports whether an account exists for the email and whether it has
// completed verification.
func (s *AuthService) Status(ctx context.Context, email string) (bool, bool, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err == domain.ErrAccountNotFound {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, account.Verified, nil
}
