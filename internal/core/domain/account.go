package domain

import (
	"errors"
	"time"
)

// Account models a registered (or pending) identity.
//
// An account is created unverified with a pending verification code; the code
// is cleared atomically when the owner proves control of the email address.
// Verified never transitions back to false.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	// VerificationCode is set only while the account is unverified. It is
	// never serialized; the registration response carries it explicitly.
	VerificationCode string    `json:"-"`
	Verified         bool      `json:"verified"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

var ErrInvalidInput = errors.New("invalid input")
var ErrAccountExists = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNotVerified = errors.New("account not verified")
var ErrInvalidToken = errors.New("invalid token")
var ErrStorageUnavailable = errors.New("storage unavailable")
