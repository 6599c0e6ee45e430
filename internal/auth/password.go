package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultHashCost = 10

// PasswordHasher hashes and checks passwords with bcrypt.
type PasswordHasher struct {
	cost int
	// dummy is compared against when the account does not exist, so an
	// unknown email costs about as much as a wrong password.
	dummy []byte
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("healthmate-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Compare reports whether password matches hash. A malformed or empty hash
// never matches.
func (h *PasswordHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CompareDummy burns one comparison against a fixed hash.
func (h *PasswordHasher) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
