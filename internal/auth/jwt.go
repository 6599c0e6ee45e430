package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// JWTService issues and verifies HS256 JSON Web Tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService accepts an empty secret so the failure surfaces per call as
// ErrMissingSecret; startup configuration validation normally rejects it
// earlier.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *JWTService) CreateToken(c Claims) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: c.Email,
		Name:  c.Name,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (s *JWTService) VerifyToken(tokenStr string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	out := &Claims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}

	return out, nil
}

// SignPayload signs an arbitrary claim set with the same secret. The
// payload's own exp and iat are replaced.
func (s *JWTService) SignPayload(payload map[string]any, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := s.now()
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}

	return signed, nil
}
