package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/nihonwa/internal/bot"
	"github.com/example/nihonwa/internal/progress"
	"github.com/example/nihonwa/pkg/models"
)

var scoreCmd = &cobra.Command{
	Use:   "score [level]",
	Short: "Recalculate and show the estimated JLPT score",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		profile, ok := a.store.ActiveProfile()
		if !ok {
			return progress.ErrNoActiveProfile
		}
		level := profile.CurrentLevel
		if len(args) > 0 {
			if level, err = models.ParseLevel(args[0]); err != nil {
				return err
			}
		}

		estimate, err := a.store.RecalculateEstimatedScore(ctx, level)
		if err != nil {
			return err
		}
		if estimate == nil {
			estimate = a.store.LevelProgress(level).EstimatedScore
		}
		if estimate == nil {
			fmt.Printf("No completed %s lessons yet.\n", level)
			return nil
		}

		text, err := bot.FormatScore(level, *estimate)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
