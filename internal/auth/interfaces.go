package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/healthmate-api/internal/user"
)

// Claims is the identity carried by a session token.
type Claims struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (v4.local).
// CreateToken uses Subject, Email and Name from the given claims; issue and
// expiry times are set by the service from its configured TTL.
type TokenService interface {
	CreateToken(claims Claims) (string, error)
	VerifyToken(token string) (*Claims, error)
}

// UserStore is the credential store the auth service needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// RevocationList remembers tokens that were signed out before expiry.
type RevocationList interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// hashToken keys stored token references so raw tokens never hit storage.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
