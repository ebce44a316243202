package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PASETO_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, TokenBackendPaseto, cfg.Auth.TokenBackend)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenDuration)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenDuration)
	assert.Equal(t, "mail:dispatch", cfg.Mail.Stream)
}

func TestLoad_PasetoKeyLengthEnforced(t *testing.T) {
	t.Setenv("PASETO_KEY", "too-short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_JWTBackend(t *testing.T) {
	t.Setenv("AUTH_TOKEN_BACKEND", "jwt")
	t.Setenv("JWT_SECRET", "super-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TokenBackendJWT, cfg.Auth.TokenBackend)
}

func TestLoad_JWTBackendRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_TOKEN_BACKEND", "jwt")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnknownBackendRejected(t *testing.T) {
	t.Setenv("AUTH_TOKEN_BACKEND", "macaroon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PASETO_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("ACCESS_TOKEN_DURATION", "900")
	t.Setenv("TRUSTED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.TrustedOrigins)
}

func TestDatabaseConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "identity", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=identity sslmode=disable", cfg.ConnectionString())
}

func TestRedisAddress(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: "6379"}
	assert.Equal(t, "cache:6379", cfg.Address())
}
