package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong login or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminLogin checks the single configured admin credential.
type AdminLogin struct {
	Login        string
	PasswordHash string // bcrypt
}

// Enabled reports whether an admin credential is configured.
func (a AdminLogin) Enabled() bool {
	return a.Login != "" && a.PasswordHash != ""
}

// Check verifies login and password. The bcrypt comparison runs even when
// the login is wrong so both failures take the same time.
func (a AdminLogin) Check(login, password string) error {
	if !a.Enabled() {
		return ErrInvalidCredentials
	}
	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(a.Login)) == 1
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	if !loginOK || err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for SB_ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}
