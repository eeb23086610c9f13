package ports

import "github.com/mikleaka/intonation-identity/internal/core/domain"

// PasswordHasher produces and checks salted one-way password digests.
// The domain does not care which algorithm backs it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. Malformed digests
	// yield false, never an error.
	Verify(plaintext, digest string) bool
}

// TokenClaims is the identity recovered from a validated session token.
type TokenClaims struct {
	AccountID string
	Username  string
	Email     string
}

// TokenCodec issues and validates signed, time-limited session tokens.
type TokenCodec interface {
	Issue(account *domain.Account) (string, error)
	// Parse verifies signature, issuer, audience and expiry. Every failure
	// collapses to domain.ErrInvalidToken.
	Parse(token string) (*TokenClaims, error)
}
