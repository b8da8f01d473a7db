package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/logger"
	"github.com/example/nihonwa/pkg/models"
)

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot represents the Telegram bot application
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	config  *BotConfig
	log     *logger.Logger
}

// New connects to the Telegram API
func New(token string, handler *Handler, config *BotConfig, log *logger.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is not set")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create bot")
	}
	log.Info("Authorized on Telegram", "account", api.Self.UserName)

	return &Bot{api: api, handler: handler, config: config, log: log}, nil
}

// Run handles updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("Bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		chatID := update.Message.Chat.ID
		if !update.Message.IsCommand() {
			b.send(chatID, Reply{Text: "I don't understand. Use /help to see what I can do.", Buttons: MainMenuButtons()})
			return
		}
		b.send(chatID, b.handler.HandleCommand(ctx, chatID, update.Message.Command(), update.Message.CommandArguments()))

	case update.CallbackQuery != nil:
		callback := update.CallbackQuery
		if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			b.log.Warn("Failed to answer callback", "error", err)
		}
		if callback.Message == nil {
			return
		}
		chatID := callback.Message.Chat.ID
		b.send(chatID, b.handler.HandleCallback(ctx, chatID, callback.Data))
	}
}

func (b *Bot) send(chatID int64, reply Reply) {
	if reply.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if len(reply.Buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(reply.Buttons)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("Failed to send message", "chat", chatID, "error", err)
	}
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(profile models.UserProfile, due int) error {
	if b.config.ReminderChatID == 0 {
		return nil
	}

	cards := "cards"
	if due == 1 {
		cards = "card"
	}
	msg := tgbotapi.NewMessage(b.config.ReminderChatID,
		fmt.Sprintf("⏰ %s, you have %d %s due for review at %s.", profile.Name, due, cards, profile.CurrentLevel))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🎴 Review now", CallbackData: callbackMenu + "review"}},
	})
	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrapf(err, "failed to send reminder for profile %s", profile.ID)
	}

	b.log.Info("Sent review reminder", "profile", profile.ID, "due", due)
	return nil
}
