package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes the passwords of created users. Cost must lie in
// [bcrypt.MinCost, bcrypt.MaxCost].
type PasswordHasher struct {
	Cost int
}

// NewPasswordHasher validates cost up front so a misconfiguration fails at
// startup rather than on the first user creation.
func NewPasswordHasher(cost int) (PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return PasswordHasher{}, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return PasswordHasher{Cost: cost}, nil
}

// Hash returns the value stored in users.password. bcrypt rejects passwords
// over 72 bytes with bcrypt.ErrPasswordTooLong.
func (h PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
