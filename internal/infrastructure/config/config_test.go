package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"COMPLIPORT_APP_NAME":                os.Getenv("COMPLIPORT_APP_NAME"),
		"COMPLIPORT_APP_ENV":                 os.Getenv("COMPLIPORT_APP_ENV"),
		"COMPLIPORT_APP_PORT":                os.Getenv("COMPLIPORT_APP_PORT"),
		"COMPLIPORT_DATABASE_HOST":           os.Getenv("COMPLIPORT_DATABASE_HOST"),
		"COMPLIPORT_DATABASE_PORT":           os.Getenv("COMPLIPORT_DATABASE_PORT"),
		"COMPLIPORT_DATABASE_USER":           os.Getenv("COMPLIPORT_DATABASE_USER"),
		"COMPLIPORT_DATABASE_PASSWORD":       os.Getenv("COMPLIPORT_DATABASE_PASSWORD"),
		"COMPLIPORT_DATABASE_DBNAME":         os.Getenv("COMPLIPORT_DATABASE_DBNAME"),
		"COMPLIPORT_DATABASE_SSLMODE":        os.Getenv("COMPLIPORT_DATABASE_SSLMODE"),
		"COMPLIPORT_DATABASE_MAX_OPEN_CONNS": os.Getenv("COMPLIPORT_DATABASE_MAX_OPEN_CONNS"),
		"COMPLIPORT_DATABASE_MAX_IDLE_CONNS": os.Getenv("COMPLIPORT_DATABASE_MAX_IDLE_CONNS"),
		"COMPLIPORT_AUTH_SECRET":             os.Getenv("COMPLIPORT_AUTH_SECRET"),
		"COMPLIPORT_SESSION_SCOPE":           os.Getenv("COMPLIPORT_SESSION_SCOPE"),
		"COMPLIPORT_SESSION_IDLE_TIMEOUT":    os.Getenv("COMPLIPORT_SESSION_IDLE_TIMEOUT"),
		"COMPLIPORT_ENTITLEMENT_TERM":        os.Getenv("COMPLIPORT_ENTITLEMENT_TERM"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "compliport-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "compliport", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "organization", cfg.Session.Scope)
		assert.Equal(t, time.Hour, cfg.Session.IdleTimeout)
		assert.Equal(t, 30*24*time.Hour, cfg.Entitlement.Term)
		assert.False(t, cfg.Entitlement.VoucherOncePerOrganization)
		assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiration)
	})

	t.Run("loads values from environment variables with COMPLIPORT prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("COMPLIPORT_APP_NAME", "test-app")
		os.Setenv("COMPLIPORT_APP_PORT", "9000")
		os.Setenv("COMPLIPORT_DATABASE_HOST", "testdb.local")
		os.Setenv("COMPLIPORT_DATABASE_PORT", "5433")
		os.Setenv("COMPLIPORT_SESSION_SCOPE", "user")
		os.Setenv("COMPLIPORT_SESSION_IDLE_TIMEOUT", "30m")
		os.Setenv("COMPLIPORT_ENTITLEMENT_TERM", "720h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "user", cfg.Session.Scope)
		assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
		assert.Equal(t, 720*time.Hour, cfg.Entitlement.Term)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("COMPLIPORT_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("COMPLIPORT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown session scope", func(t *testing.T) {
		clearEnv()
		os.Setenv("COMPLIPORT_SESSION_SCOPE", "team")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.scope")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"COMPLIPORT_APP_ENV":           os.Getenv("COMPLIPORT_APP_ENV"),
		"COMPLIPORT_AUTH_SECRET":       os.Getenv("COMPLIPORT_AUTH_SECRET"),
		"COMPLIPORT_DATABASE_PASSWORD": os.Getenv("COMPLIPORT_DATABASE_PASSWORD"),
		"COMPLIPORT_DATABASE_SSLMODE":  os.Getenv("COMPLIPORT_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires auth.secret in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("COMPLIPORT_APP_ENV", "production")
		os.Setenv("COMPLIPORT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("COMPLIPORT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.secret is required in production")
	})

	t.Run("requires auth.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("COMPLIPORT_APP_ENV", "production")
		os.Setenv("COMPLIPORT_AUTH_SECRET", "short-secret")
		os.Setenv("COMPLIPORT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("COMPLIPORT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("COMPLIPORT_APP_ENV", "production")
		os.Setenv("COMPLIPORT_AUTH_SECRET", "this-is-a-very-secure-session-secret-32chars")
		os.Setenv("COMPLIPORT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("COMPLIPORT_APP_ENV", "production")
		os.Setenv("COMPLIPORT_AUTH_SECRET", "this-is-a-very-secure-session-secret-32chars")
		os.Setenv("COMPLIPORT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("COMPLIPORT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("COMPLIPORT_APP_ENV", "production")
		os.Setenv("COMPLIPORT_AUTH_SECRET", "this-is-a-very-secure-session-secret-32chars")
		os.Setenv("COMPLIPORT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("COMPLIPORT_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}
