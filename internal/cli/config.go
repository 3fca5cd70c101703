package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/evcraddock/suggestion-board/internal/auth"
)

const defaultServerURL = "http://localhost:3001"

// CLIConfig holds CLI configuration persisted to disk. Token is either the
// JWT saved by `sb login` or an API key pasted in by hand.
type CLIConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Token     string `yaml:"token,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sb", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL() string {
	if v := os.Getenv("SB_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// tokenSource says where the active bearer token came from.
type tokenSource string

const (
	tokenFromEnv    tokenSource = "SB_TOKEN"
	tokenFromConfig tokenSource = "config"
)

// activeToken returns the bearer token and its source. SB_TOKEN wins, so a
// CI job can moderate with an API key without disturbing the JWT saved by
// `sb login`.
func activeToken() (string, tokenSource) {
	if v := os.Getenv("SB_TOKEN"); v != "" {
		return v, tokenFromEnv
	}
	cfg, err := loadConfig()
	if err == nil && cfg.Token != "" {
		return cfg.Token, tokenFromConfig
	}
	return "", ""
}

// getToken returns the bearer token (JWT or API key), if any.
func getToken() string {
	token, _ := activeToken()
	return token
}

// describeToken renders a token for display without revealing it, e.g.
// "sb_3f9a1c… (api key, from SB_TOKEN)".
func describeToken(token string, source tokenSource) string {
	prefix := token
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	kind := auth.CredentialKind(token)
	if kind == "" {
		kind = "unrecognized"
	}
	return fmt.Sprintf("%s… (%s, from %s)", prefix, kind, source)
}
