package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/redmonkez12/healthmate-api/internal/logging"
	"github.com/redmonkez12/healthmate-api/internal/user"
)

const MinPasswordLength = 6

// Session is the outcome of a successful signup or signin.
type Session struct {
	User  user.PublicUser
	Token string
}

// Service handles authentication business logic
type Service struct {
	users   UserStore
	tokens  TokenService
	hasher  *PasswordHasher
	revoked RevocationList
}

// NewService wires the auth service. revoked may be nil, in which case
// signout only clears the client cookie.
func NewService(users UserStore, tokens TokenService, hasher *PasswordHasher, revoked RevocationList) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		revoked: revoked,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account and returns a session for it.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, newValidationError("Name, email and password are required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, newValidationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, user.ErrDuplicateEmail
	case !errors.Is(err, user.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	// the unique index still settles concurrent signups for the same email
	created, err := s.users.Create(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(created)
}

// Signin checks credentials. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (s *Service) Signin(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, newValidationError("Email and password are required")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.hasher.CompareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Compare(existing.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(existing)
}

// Signout revokes token server-side when a revocation list is configured.
// Failures are logged, never returned: signout always succeeds.
func (s *Service) Signout(ctx context.Context, token string) {
	if s.revoked == nil || token == "" {
		return
	}

	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return
	}

	if err := s.revoked.Revoke(ctx, token, claims.ExpiresAt); err != nil {
		logging.FromContext(ctx).Warn("failed to revoke session token", "error", err)
	}
}

// Identify resolves a session token to its user. Any error means the caller
// should treat the request as anonymous.
func (s *Service) Identify(ctx context.Context, token string) (*user.PublicUser, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, token)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	public := u.Public()
	return &public, nil
}

func (s *Service) issue(u *user.User) (*Session, error) {
	public := u.Public()

	token, err := s.tokens.CreateToken(Claims{
		Subject: public.ID,
		Email:   public.Email,
		Name:    public.Name,
	})
	if err != nil {
		return nil, err
	}

	return &Session{User: public, Token: token}, nil
}
