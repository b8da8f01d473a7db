package config

import (
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/database"
)

// Default notification window and batch sizes
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
	DefaultReviewBatchSize       = 10
	DefaultLessonSize            = 10
	DefaultDBPath                = "data/nihonwa.db"
)

// Config holds every setting read from the environment
type Config struct {
	DBType      string // "sqlite" or "postgres"
	DBPath      string // SQLite file
	DatabaseURL string // PostgreSQL DSN

	TelegramToken  string
	ReminderChatID int64

	LogMode string

	NotificationStartHour int
	NotificationEndHour   int
	ReviewBatchSize       int
	LessonSize            int
}

// Load reads .env (when present) and then the process environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	cfg := &Config{
		DBType:                strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DBPath:                getEnv("DB_PATH", DefaultDBPath),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		TelegramToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		LogMode:               getEnv("LOG_MODE", "development"),
		NotificationStartHour: DefaultNotificationStartHour,
		NotificationEndHour:   DefaultNotificationEndHour,
		ReviewBatchSize:       DefaultReviewBatchSize,
		LessonSize:            DefaultLessonSize,
	}

	var err error
	if cfg.NotificationStartHour, err = getHour("NOTIFICATION_START_HOUR", cfg.NotificationStartHour); err != nil {
		return nil, err
	}
	if cfg.NotificationEndHour, err = getHour("NOTIFICATION_END_HOUR", cfg.NotificationEndHour); err != nil {
		return nil, err
	}
	if cfg.ReviewBatchSize, err = getPositive("REVIEW_BATCH_SIZE", cfg.ReviewBatchSize); err != nil {
		return nil, err
	}
	if cfg.LessonSize, err = getPositive("LESSON_SIZE", cfg.LessonSize); err != nil {
		return nil, err
	}
	if v := os.Getenv("REMINDER_CHAT_ID"); v != "" {
		cfg.ReminderChatID, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid REMINDER_CHAT_ID %q", v)
		}
	}

	switch cfg.DBType {
	case "sqlite", "sqlite3":
		cfg.DBType = "sqlite"
	case "postgres", "postgresql":
		cfg.DBType = "postgres"
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL must be set when DB_TYPE is postgres")
		}
	default:
		return nil, errors.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}

	return cfg, nil
}

// Database returns the connection settings for the configured backend
func (c *Config) Database() database.Config {
	if c.DBType == "postgres" {
		return database.Config{Driver: database.DriverPostgres, DSN: c.DatabaseURL}
	}
	return database.Config{Driver: database.DriverSQLite, DSN: c.DBPath}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getHour(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	h, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || h < 0 || h > 23 {
		return 0, errors.Errorf("%s must be an hour between 0 and 23, got %q", key, v)
	}
	return h, nil
}

func getPositive(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, errors.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
