package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets a var for the test while restoring it afterwards.
func clearEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoad_FromEnvFile(t *testing.T) {
	for _, key := range []string{EnvRemoteURL, EnvAPIKey, EnvAccessToken, EnvDBPath} {
		clearEnv(t, key)
	}

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"CARRINHO_REMOTE_URL=https://example.supabase.co\n"+
			"CARRINHO_API_KEY=anon-key\n"+
			"CARRINHO_DB=/tmp/cart.db\n",
	), 0o600))

	cfg, err := Load(envPath, "")
	require.NoError(t, err)

	assert.Equal(t, "https://example.supabase.co", cfg.RemoteURL)
	assert.Equal(t, "anon-key", cfg.APIKey)
	assert.Equal(t, "/tmp/cart.db", cfg.DBPath)
	assert.Empty(t, cfg.AccessToken)

	// Default policy: retry forever, no dead-lettering.
	assert.Zero(t, cfg.Policy.MaxAttempts)
	assert.False(t, cfg.Policy.DeadLetter)
	assert.Equal(t, time.Second, cfg.Policy.InitialBackoff)
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	for _, key := range []string{EnvRemoteURL, EnvAPIKey, EnvAccessToken} {
		clearEnv(t, key)
	}
	t.Setenv(EnvDBPath, "/tmp/from-env.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"), "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.DBPath)
}

func TestLoad_PolicyFile(t *testing.T) {
	clearEnv(t, EnvDBPath)

	dir := t.TempDir()
	policyPath := filepath.Join(dir, "sync.yaml")
	require.NoError(t, os.WriteFile(policyPath, []byte(
		"max_attempts: 5\ninitial_backoff: 2s\nmax_backoff: 5m\ndead_letter: true\n",
	), 0o600))

	cfg, err := Load(filepath.Join(dir, "nope.env"), policyPath)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Policy.MaxAttempts)
	assert.True(t, cfg.Policy.DeadLetter)
	assert.Equal(t, 2*time.Second, cfg.Policy.InitialBackoff)
	assert.Equal(t, 5*time.Minute, cfg.Policy.MaxBackoff)
}

func TestLoad_BadPolicyFile(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "sync.yaml")
	require.NoError(t, os.WriteFile(policyPath, []byte("initial_backoff: soon\n"), 0o600))

	_, err := Load(filepath.Join(dir, "nope.env"), policyPath)
	require.Error(t, err)

	_, err = Load(filepath.Join(dir, "nope.env"), filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}
