package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
)

// PasswordService performs authenticated password changes.
type PasswordService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewPasswordService(repo ports.AccountRepository, hasher ports.PasswordHasher, log zerolog.Logger) *PasswordService {
	return &PasswordService{repo: repo, hasher: hasher, log: log}
}

// Change re-authenticates the current password before committing the new
// hash. The stored hash is untouched unless every check passes.
func (s *PasswordService) Change(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return domain.ErrInvalidInput
	}

	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(currentPassword, account.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return err
	}

	s.log.Info().Str("account_id", account.ID).Msg("password changed")
	return nil
}
