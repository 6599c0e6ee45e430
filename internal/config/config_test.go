package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.False(t, cfg.Server.IsProduction())
	assert.Equal(t, "healthmate", cfg.Database.DBName)
	assert.Equal(t, "jwt", cfg.Auth.TokenFormat)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.Revocation)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_UnsupportedDatabaseScheme(t *testing.T) {
	for _, url := range []string{"mongodb://db:27017/healthmate", "mysql://u:p@db/healthmate", "healthmate.db"} {
		t.Run(url, func(t *testing.T) {
			t.Setenv("DATABASE_URL", url)
			t.Setenv("JWT_SECRET", "s")

			_, err := Load()
			require.ErrorIs(t, err, ErrConfig)
			assert.Contains(t, err.Error(), "DATABASE_URL")
		})
	}
}

func TestDatabaseConfig_DriverRejectsUnknownSchemes(t *testing.T) {
	assert.Empty(t, (&DatabaseConfig{URL: "mysql://u:p@db/healthmate"}).Driver())
	assert.Empty(t, (&DatabaseConfig{URL: "postgres-db:5432"}).Driver())
	assert.Equal(t, "sqlite3", (&DatabaseConfig{URL: "file:dev.db"}).Driver())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_PasetoNeedsThirtyTwoByteKey(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_FORMAT", "paseto")

	_, err := Load()
	require.ErrorIs(t, err, ErrConfig)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "paseto", cfg.Auth.TokenFormat)
}

func TestLoad_UnknownTokenFormat(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_FORMAT", "saml")

	_, err := Load()
	require.ErrorIs(t, err, ErrConfig)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TOKEN_TTL", "60")
	t.Setenv("SESSION_REVOCATION", "true")
	t.Setenv("TRUSTED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.Revocation)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.TrustedOrigins)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	tests := []struct {
		name       string
		cfg        DatabaseConfig
		wantDriver string
		wantDSN    string
	}{
		{
			name:       "postgres without database gets default",
			cfg:        DatabaseConfig{URL: "postgres://u:p@db:5432?sslmode=disable", DBName: "healthmate"},
			wantDriver: "postgres",
			wantDSN:    "postgres://u:p@db:5432/healthmate?sslmode=disable",
		},
		{
			name:       "postgres with database is kept",
			cfg:        DatabaseConfig{URL: "postgresql://u:p@db/other", DBName: "healthmate"},
			wantDriver: "postgres",
			wantDSN:    "postgresql://u:p@db/other",
		},
		{
			name:       "sqlite file dsn is passed through",
			cfg:        DatabaseConfig{URL: "file::memory:?cache=shared"},
			wantDriver: "sqlite3",
			wantDSN:    "file::memory:?cache=shared",
		},
		{
			name:       "sqlite scheme is stripped",
			cfg:        DatabaseConfig{URL: "sqlite://file:dev.db?cache=shared", DBName: "healthmate"},
			wantDriver: "sqlite3",
			wantDSN:    "file:dev.db?cache=shared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDriver, tt.cfg.Driver())
			assert.Equal(t, tt.wantDSN, tt.cfg.ConnectionString())
		})
	}
}
