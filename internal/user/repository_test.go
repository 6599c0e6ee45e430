package user

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/healthmate-api/internal/config"
	"github.com/redmonkez12/healthmate-api/internal/database"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(context.Background(), config.DatabaseConfig{URL: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestRepository_EnsureSchemaIdempotent(t *testing.T) {
	repo := setupRepo(t)
	require.NoError(t, repo.EnsureSchema(context.Background()))
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Asha", "asha@example.com", "hash")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	byEmail, err := repo.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "Asha", byEmail.Name)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", byID.Email)
	assert.Empty(t, byID.PasswordHash, "hash must not be selected by id")
}

func TestRepository_NotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_DuplicateEmail(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "A", "a@x.com", "h1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "B", "a@x.com", "h2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRepository_ConcurrentDuplicateInsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	const n = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, "A", "race@x.com", "h")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, ErrDuplicateEmail):
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dups)
}
