package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the backend.
type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	TelegramToken string // empty disables the Telegram notifier
	SweepTime     string // HH:MM, daily execute-pending sweep
	NotifyTime    string // HH:MM, daily upcoming-execution scan
}

// Load reads configuration from .env (if present) and environment variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:      strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		SweepTime:     strings.TrimSpace(os.Getenv("SWEEP_TIME")),
		NotifyTime:    strings.TrimSpace(os.Getenv("NOTIFY_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "cashplan.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.SweepTime == "" {
		cfg.SweepTime = "02:00"
	}
	if cfg.NotifyTime == "" {
		cfg.NotifyTime = "08:00"
	}

	if err := validateTime(cfg.SweepTime); err != nil {
		return cfg, fmt.Errorf("SWEEP_TIME: %w", err)
	}
	if err := validateTime(cfg.NotifyTime); err != nil {
		return cfg, fmt.Errorf("NOTIFY_TIME: %w", err)
	}

	return cfg, nil
}

func validateTime(v string) error {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid time %q, expected HH:MM", v)
	}
	return nil
}
