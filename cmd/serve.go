package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/nihonwa/internal/bot"
	"github.com/example/nihonwa/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the review reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		botConfig := bot.ConfigFrom(a.cfg)
		handler := bot.NewHandler(a.store, botConfig, a.log.With("component", "bot"))
		b, err := bot.New(a.cfg.TelegramToken, handler, botConfig, a.log.With("component", "bot"))
		if err != nil {
			return err
		}

		sched := scheduler.New(a.store, b, scheduler.Config{
			StartHour: a.cfg.NotificationStartHour,
			EndHour:   a.cfg.NotificationEndHour,
			BatchSize: a.cfg.ReviewBatchSize,
		}, a.log.With("component", "scheduler"))
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()

		a.log.Info("Bot started. Press Ctrl+C to stop.")
		if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		a.log.Info("Bot stopped successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
