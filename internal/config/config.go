// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	Addr         string
	DBPath       string
	DatabaseURL  string // when set, PostgreSQL is used instead of SQLite
	DevMode      bool
	LogLevel     string
	StoreTimeout time.Duration

	JWTSecret         string
	TokenTTL          time.Duration
	AdminLogin        string
	AdminPasswordHash string // bcrypt

	CORSOrigins []string

	NATSURL         string
	TelegramToken   string
	TelegramChatIDs []int64
	SentryDSN       string
}

const (
	defaultAddr         = ":3001"
	defaultStoreTimeout = 5 * time.Second
	defaultTokenTTL     = 24 * time.Hour
)

// Load reads an optional .env file and then the SB_* environment
// variables. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:              envOrDefault("SB_ADDR", defaultAddr),
		DBPath:            os.Getenv("SB_DB_PATH"),
		DatabaseURL:       os.Getenv("SB_DATABASE_URL"),
		DevMode:           os.Getenv("SB_DEV_MODE") == "true",
		LogLevel:          os.Getenv("SB_LOG_LEVEL"),
		JWTSecret:         os.Getenv("SB_JWT_SECRET"),
		AdminLogin:        os.Getenv("SB_ADMIN_LOGIN"),
		AdminPasswordHash: os.Getenv("SB_ADMIN_PASSWORD_HASH"),
		CORSOrigins:       splitList(os.Getenv("SB_CORS_ORIGINS")),
		NATSURL:           os.Getenv("SB_NATS_URL"),
		TelegramToken:     os.Getenv("SB_TELEGRAM_BOT_TOKEN"),
		SentryDSN:         os.Getenv("SB_SENTRY_DSN"),
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("getting home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".suggestion-board", "board.db")
	}

	var err error
	if cfg.StoreTimeout, err = durationEnv("SB_STORE_TIMEOUT", defaultStoreTimeout); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = durationEnv("SB_TOKEN_TTL", defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.TelegramChatIDs, err = chatIDs(os.Getenv("SB_TELEGRAM_CHAT_IDS")); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// AdminLoginEnabled reports whether the admin login endpoint can issue
// tokens.
func (c Config) AdminLoginEnabled() bool {
	return c.AdminLogin != "" && c.AdminPasswordHash != ""
}

// TelegramEnabled reports whether Telegram notifications are configured.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && len(c.TelegramChatIDs) > 0
}

// Validate checks settings that depend on each other.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "SB_ADDR must not be empty")
	}
	if c.AdminLoginEnabled() && len(c.JWTSecret) < 16 {
		problems = append(problems, "SB_JWT_SECRET must be at least 16 characters when admin login is configured")
	}
	if (c.AdminLogin == "") != (c.AdminPasswordHash == "") {
		problems = append(problems, "SB_ADMIN_LOGIN and SB_ADMIN_PASSWORD_HASH must be set together")
	}
	if c.AdminPasswordHash != "" && !strings.HasPrefix(c.AdminPasswordHash, "$2") {
		problems = append(problems, "SB_ADMIN_PASSWORD_HASH must be a bcrypt hash (see: sb hash-password)")
	}
	if c.TelegramToken != "" && len(c.TelegramChatIDs) == 0 {
		problems = append(problems, "SB_TELEGRAM_CHAT_IDS is required when SB_TELEGRAM_BOT_TOKEN is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func chatIDs(v string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(v) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing SB_TELEGRAM_CHAT_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
