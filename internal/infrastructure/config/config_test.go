package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_DB", "MONGO_TRANSACTIONS", "PASS_COLLECTION", "REMINDER_WINDOW_DAYS", "READ_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ticpin", cfg.MongoDB)
	assert.False(t, cfg.MongoTransactions)
	assert.Equal(t, "ticpin_pass_users", cfg.PassCollection)
	assert.Equal(t, 7, cfg.ReminderWindowDays)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("REMINDER_WINDOW_DAYS", "3")
	t.Setenv("REMINDER_SCHEDULE", "")
	t.Setenv("CRON_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.MongoTransactions)
	assert.Equal(t, 3, cfg.ReminderWindowDays)
	assert.Empty(t, cfg.ReminderSchedule, "an explicitly empty schedule disables the cron job")
	assert.Equal(t, "s3cret", cfg.CronSecret)
}

func TestGetEnvAsBoolFallsBack(t *testing.T) {
	t.Setenv("FLAG_UNDER_TEST", "maybe")
	assert.True(t, getEnvAsBool("FLAG_UNDER_TEST", true))
}
