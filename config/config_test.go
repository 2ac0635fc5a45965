package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SLACK_SIGNING_SECRET", "secret")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	for _, key := range []string{
		"SUMMARY_CHANNEL_ID", "DB_DRIVER", "DB_PATH", "DYNAMO_TABLE_NAME",
		"DYNAMO_LOCAL", "TIMEZONE", "REPLAY_WINDOW_SECONDS",
		"DIALOG_TIMEOUT_MS", "DIGEST_AT", "LISTEN_SOCKET",
		"OPENAI_API_KEY", "OPENAI_MODEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./db/standup_logs.db", cfg.DBPath)
	assert.Equal(t, "standup_logs", cfg.DynamoTableName)
	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, 300*time.Second, cfg.ReplayWindow)
	assert.Equal(t, 1500*time.Millisecond, cfg.DialogTimeout)
	assert.Equal(t, "09:00", cfg.DigestAt)
	assert.Equal(t, ":3000", cfg.Listen)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REPLAY_WINDOW_SECONDS", "60")
	t.Setenv("DIALOG_TIMEOUT_MS", "500")
	t.Setenv("TIMEZONE", "Asia/Tokyo")
	t.Setenv("DB_DRIVER", "dynamodb")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.ReplayWindow)
	assert.Equal(t, 500*time.Millisecond, cfg.DialogTimeout)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, "dynamodb", cfg.DBDriver)
}

func TestLoad_MissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("SLACK_SIGNING_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingToken(t *testing.T) {
	setRequired(t)
	t.Setenv("SLACK_BOT_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("TIMEZONE", "Not/AZone")

	_, err := Load()
	assert.Error(t, err)
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}
