package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 30*time.Minute, cfg.TokenTTL)
	require.Equal(t, "uploads", cfg.UploadDir)
	require.Equal(t, "attorney@company.com", cfg.StaffEmail)
	require.True(t, cfg.EmailEnabled)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL_MINUTES", "15")
	t.Setenv("EMAIL_ENABLED", "false")
	t.Setenv("STAFF_EMAIL", "legal@firm.example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, 15*time.Minute, cfg.TokenTTL)
	require.False(t, cfg.EmailEnabled)
	require.Equal(t, "legal@firm.example.com", cfg.StaffEmail)
}

func TestNewConfig_InvalidTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL_MINUTES", "zero")
	_, err := NewConfig()
	require.Error(t, err)

	t.Setenv("TOKEN_TTL_MINUTES", "-5")
	_, err = NewConfig()
	require.Error(t, err)
}
