package bot

import "github.com/example/nihonwa/internal/config"

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Cards per /review batch
	ReviewBatchSize int
	// Words per lesson
	LessonSize int
	// Chat that receives scheduled reminders; 0 disables them
	ReminderChatID int64
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		ReviewBatchSize: config.DefaultReviewBatchSize,
		LessonSize:      config.DefaultLessonSize,
	}
}

// ConfigFrom takes the bot settings from the application config
func ConfigFrom(cfg *config.Config) *BotConfig {
	return &BotConfig{
		ReviewBatchSize: cfg.ReviewBatchSize,
		LessonSize:      cfg.LessonSize,
		ReminderChatID:  cfg.ReminderChatID,
	}
}
