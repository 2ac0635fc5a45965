package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the bot. It is built once at startup
// and handed to each component; nothing below main reads the environment.
type Config struct {
	SigningSecret  string
	BotToken       string
	SummaryChannel string

	DBDriver        string // "sqlite" or "dynamodb"
	DBPath          string
	DynamoTableName string
	DynamoLocal     bool

	Timezone      string
	ReplayWindow  time.Duration
	DialogTimeout time.Duration
	DigestAt      string // HH:MM, local to Timezone

	Listen string

	OpenAIAPIKey string
	OpenAIModel  string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		SigningSecret:   strings.TrimSpace(os.Getenv("SLACK_SIGNING_SECRET")),
		BotToken:        strings.TrimSpace(os.Getenv("SLACK_BOT_TOKEN")),
		SummaryChannel:  strings.TrimSpace(os.Getenv("SUMMARY_CHANNEL_ID")),
		DBDriver:        strings.TrimSpace(os.Getenv("DB_DRIVER")),
		DBPath:          strings.TrimSpace(os.Getenv("DB_PATH")),
		DynamoTableName: strings.TrimSpace(os.Getenv("DYNAMO_TABLE_NAME")),
		DynamoLocal:     os.Getenv("DYNAMO_LOCAL") != "",
		Timezone:        strings.TrimSpace(os.Getenv("TIMEZONE")),
		ReplayWindow:    parseSeconds(os.Getenv("REPLAY_WINDOW_SECONDS")),
		DialogTimeout:   parseMillis(os.Getenv("DIALOG_TIMEOUT_MS")),
		DigestAt:        strings.TrimSpace(os.Getenv("DIGEST_AT")),
		Listen:          strings.TrimSpace(os.Getenv("LISTEN_SOCKET")),
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:     strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
	}

	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./db/standup_logs.db"
	}
	if cfg.DynamoTableName == "" {
		cfg.DynamoTableName = "standup_logs"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Los_Angeles"
	}
	if cfg.ReplayWindow == 0 {
		cfg.ReplayWindow = 300 * time.Second
	}
	if cfg.DialogTimeout == 0 {
		cfg.DialogTimeout = 1500 * time.Millisecond
	}
	if cfg.DigestAt == "" {
		cfg.DigestAt = "09:00"
	}
	if cfg.Listen == "" {
		cfg.Listen = ":3000"
	}

	if cfg.SigningSecret == "" {
		return nil, fmt.Errorf("SLACK_SIGNING_SECRET is required")
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN is required")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location resolves the configured display timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseSeconds(raw string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func parseMillis(raw string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}
