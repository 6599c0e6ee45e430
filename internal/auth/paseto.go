package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

// PasetoService handles PASETO token creation and validation.
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305).
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
	now          func() time.Time
}

func NewPasetoService(symmetricKey []byte, ttl time.Duration) (*PasetoService, error) {
	if len(symmetricKey) == 0 {
		return nil, ErrMissingSecret
	}
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

func (s *PasetoService) CreateToken(c Claims) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(s.ttl))
	token.SetSubject(c.Subject)
	token.SetString("email", c.Email)
	token.SetString("name", c.Name)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken decrypts a v4.local token. Expiry is checked against the
// service clock rather than the parser's.
func (s *PasetoService) VerifyToken(tokenStr string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !s.now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrInvalidToken
	}

	email, err := token.GetString("email")
	if err != nil {
		return nil, ErrInvalidToken
	}

	// name is optional
	name, _ := token.GetString("name")

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Subject:   subject,
		Email:     email,
		Name:      name,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
