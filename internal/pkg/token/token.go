// Package token implements the session token codec on top of HS256 JWTs.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
)

const defaultTTL = 7 * 24 * time.Hour

// Claims is the wire shape of a session token payload. The account id rides
// in the registered subject claim.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Codec signs and validates session tokens with a symmetric secret. The
// secret must be supplied by configuration; constructing a codec with an
// empty secret is a programming error caught at startup, not here.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewCodec(secret, issuer, audience string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Codec{secret: []byte(secret), issuer: issuer, audience: audience, ttl: ttl}
}

// Issue creates a signed token carrying the account identity, valid for the
// codec's TTL from now.
func (c *Codec) Issue(account *domain.Account) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: account.Username,
		Email:    account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Parse verifies signature, issuer, audience and expiry. Callers never learn
// why a token was rejected: expired and tampered both come back as
// domain.ErrInvalidToken.
func (c *Codec) Parse(raw string) (*ports.TokenClaims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithAudience(c.audience))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	return &ports.TokenClaims{
		AccountID: claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
	}, nil
}
