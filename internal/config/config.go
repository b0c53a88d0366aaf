// Package config assembles runtime configuration from the environment
// and an optional retry-policy file. Secrets (API key, access token)
// come from env vars, optionally seeded from a .env file; tuning knobs
// live in YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"carrinho/internal/sync"
)

// Environment variables read by Load.
const (
	EnvRemoteURL   = "CARRINHO_REMOTE_URL"
	EnvAPIKey      = "CARRINHO_API_KEY"
	EnvAccessToken = "CARRINHO_ACCESS_TOKEN"
	EnvDBPath      = "CARRINHO_DB"
)

// Config is everything the application needs to wire itself up.
// RemoteURL may be empty: the app then runs purely offline and the
// outbox just accumulates.
type Config struct {
	RemoteURL   string
	APIKey      string
	AccessToken string
	DBPath      string
	Policy      sync.Policy
}

// Load reads configuration. A missing .env file is fine, vars may come
// from the real environment; an explicitly given policy file that does
// not parse is an error.
func Load(envPath, policyPath string) (Config, error) {
	if envPath == "" {
		envPath = ".env"
	}
	if err := godotenv.Load(envPath); err != nil {
		slog.Debug("no env file loaded", "path", envPath, "error", err)
	}

	cfg := Config{
		RemoteURL:   os.Getenv(EnvRemoteURL),
		APIKey:      os.Getenv(EnvAPIKey),
		AccessToken: os.Getenv(EnvAccessToken),
		DBPath:      os.Getenv(EnvDBPath),
		Policy:      sync.DefaultPolicy(),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}

	if policyPath != "" {
		policy, err := loadPolicy(policyPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Policy = policy
	}

	return cfg, nil
}

// policyFile is the YAML shape; durations are Go duration strings
// ("30s", "5m").
type policyFile struct {
	MaxAttempts    int    `yaml:"max_attempts"`
	InitialBackoff string `yaml:"initial_backoff"`
	MaxBackoff     string `yaml:"max_backoff"`
	DeadLetter     bool   `yaml:"dead_letter"`
}

func loadPolicy(path string) (sync.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sync.Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return sync.Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	policy := sync.DefaultPolicy()
	policy.MaxAttempts = file.MaxAttempts
	policy.DeadLetter = file.DeadLetter
	if file.InitialBackoff != "" {
		policy.InitialBackoff, err = time.ParseDuration(file.InitialBackoff)
		if err != nil {
			return sync.Policy{}, fmt.Errorf("policy initial_backoff: %w", err)
		}
	}
	if file.MaxBackoff != "" {
		policy.MaxBackoff, err = time.ParseDuration(file.MaxBackoff)
		if err != nil {
			return sync.Policy{}, fmt.Errorf("policy max_backoff: %w", err)
		}
	}
	return policy, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "carrinho.db"
	}
	return filepath.Join(home, ".carrinho", "carrinho.db")
}
