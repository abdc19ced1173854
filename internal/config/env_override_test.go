package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("credentials from environment", func(t *testing.T) {
		t.Setenv("VISAWATCH_EMAIL", "env@example.com")
		t.Setenv("VISAWATCH_PASSWORD", "env-secret")

		cfg := &Config{Credentials: CredentialsConfig{Email: "file@example.com", Password: "file"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "env@example.com", cfg.Credentials.Email)
		assert.Equal(t, "env-secret", cfg.Credentials.Password)
	})

	t.Run("empty variables keep file values", func(t *testing.T) {
		t.Setenv("VISAWATCH_EMAIL", "")
		t.Setenv("VISAWATCH_PASSWORD", "")

		cfg := &Config{Credentials: CredentialsConfig{Email: "file@example.com", Password: "file"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "file@example.com", cfg.Credentials.Email)
		assert.Equal(t, "file", cfg.Credentials.Password)
	})

	t.Run("smtp password and chrome binary", func(t *testing.T) {
		t.Setenv("VISAWATCH_SMTP_PASSWORD", "smtp-secret")
		t.Setenv("VISAWATCH_CHROME_BIN", "/usr/bin/chromium")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "smtp-secret", cfg.Alert.Email.Password)
		assert.Equal(t, "/usr/bin/chromium", cfg.Browser.Bin)
	})
}
