package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	GLPI struct {
		URL         string
		AppToken    string
		UserToken   string
		VerifyCerts bool
	}
	Mail struct {
		Host       string
		Port       int
		From       string
		AdminEmail string
	}
	Telegram struct {
		BotToken  string
		ChatID    int64
		RateLimit int
	}
	Logging struct {
		Dir   string
		Level string
	}
	Testing bool
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// GLPI settings
	cfg.GLPI.URL = os.Getenv("GLPI_URL")
	cfg.GLPI.AppToken = os.Getenv("GLPI_APPTOKEN")
	cfg.GLPI.UserToken = os.Getenv("GLPI_USERTOKEN")
	cfg.GLPI.VerifyCerts = boolEnv("GLPI_VERIFY_CERTS")

	// Mail settings
	cfg.Mail.Host = os.Getenv("MAILHOST")
	if p, err := strconv.Atoi(os.Getenv("MAILHOST_PORT")); err == nil {
		cfg.Mail.Port = p
	}
	cfg.Mail.From = os.Getenv("MY_EMAIL_FROM")
	cfg.Mail.AdminEmail = os.Getenv("MY_EMAIL")

	// Optional Telegram channel
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}
	if r, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil {
		cfg.Telegram.RateLimit = r
	}

	// Logging settings
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	cfg.Testing = boolEnv("TESTING")

	// Validate required settings
	missing := []string{}
	if cfg.GLPI.URL == "" {
		missing = append(missing, "GLPI_URL")
	}
	if cfg.GLPI.AppToken == "" {
		missing = append(missing, "GLPI_APPTOKEN")
	}
	if cfg.GLPI.UserToken == "" {
		missing = append(missing, "GLPI_USERTOKEN")
	}
	if cfg.Mail.Host == "" {
		missing = append(missing, "MAILHOST")
	}
	if cfg.Mail.Port == 0 {
		missing = append(missing, "MAILHOST_PORT")
	}
	if cfg.Mail.From == "" {
		missing = append(missing, "MY_EMAIL_FROM")
	}
	if cfg.Mail.AdminEmail == "" {
		missing = append(missing, "MY_EMAIL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warning"
	}
	if cfg.Telegram.RateLimit <= 0 {
		cfg.Telegram.RateLimit = 1
	}

	return cfg, nil
}

// TelegramEnabled reports whether the optional Telegram channel is fully
// configured.
func (c Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}

func boolEnv(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n != 0
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
