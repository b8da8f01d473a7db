package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nihonwa/internal/database"
)

// clearEnv unsets keys for the duration of the test
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

var allKeys = []string{
	"DB_TYPE", "DB_PATH", "DATABASE_URL", "TELEGRAM_BOT_TOKEN", "LOG_MODE",
	"NOTIFICATION_START_HOUR", "NOTIFICATION_END_HOUR", "REVIEW_BATCH_SIZE",
	"LESSON_SIZE", "REMINDER_CHAT_ID",
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, allKeys...)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultNotificationStartHour, cfg.NotificationStartHour)
	assert.Equal(t, DefaultNotificationEndHour, cfg.NotificationEndHour)
	assert.Equal(t, DefaultReviewBatchSize, cfg.ReviewBatchSize)
	assert.Equal(t, DefaultLessonSize, cfg.LessonSize)
	assert.Equal(t, int64(0), cfg.ReminderChatID)
	assert.Equal(t, database.Config{Driver: database.DriverSQLite, DSN: DefaultDBPath}, cfg.Database())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t, allKeys...)
	t.Setenv("DB_TYPE", "PostgreSQL")
	t.Setenv("DATABASE_URL", "postgres://localhost/nihonwa")
	t.Setenv("NOTIFICATION_START_HOUR", "7")
	t.Setenv("REMINDER_CHAT_ID", "12345")
	t.Setenv("LESSON_SIZE", "5")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, 7, cfg.NotificationStartHour)
	assert.Equal(t, int64(12345), cfg.ReminderChatID)
	assert.Equal(t, 5, cfg.LessonSize)
	assert.Equal(t, database.Config{Driver: database.DriverPostgres, DSN: "postgres://localhost/nihonwa"}, cfg.Database())
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t, allKeys...)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=/tmp/dotenv.db\nREVIEW_BATCH_SIZE=25\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/dotenv.db", cfg.DBPath)
	assert.Equal(t, 25, cfg.ReviewBatchSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"hour out of range", map[string]string{"NOTIFICATION_END_HOUR": "24"}},
		{"batch size not a number", map[string]string{"REVIEW_BATCH_SIZE": "lots"}},
		{"unknown db type", map[string]string{"DB_TYPE": "mongo"}},
		{"postgres without url", map[string]string{"DB_TYPE": "postgres"}},
		{"bad chat id", map[string]string{"REMINDER_CHAT_ID": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, allKeys...)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
