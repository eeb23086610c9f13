// Package password implements the credential hasher on top of bcrypt.
package password

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords with bcrypt. bcrypt embeds a per-call
// random salt in the digest, so equal plaintexts never produce equal digests,
// and its comparison is constant-time in the secret.
type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is a
// mismatch, not an error.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
