package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/healthmate-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

const emailIndex = "users_email_key"

// Repository handles user persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the users table and the unique email index when they
// do not exist yet. Safe to call any number of times.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*database.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = r.db.NewCreateIndex().
		Model((*database.User)(nil)).
		Unique().
		Index(emailIndex).
		Column("email").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}

	return nil
}

// Create inserts a new user. The email is expected to be normalized already.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	dbUser := &database.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user, password hash included, by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID. The password hash is not selected.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		ExcludeColumn("password_hash").
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Name:         dbu.Name,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
