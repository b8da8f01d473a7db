package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/nihonwa/internal/progress"
	"github.com/example/nihonwa/pkg/models"
)

var lessonSection string

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Record lesson results",
}

var lessonCompleteCmd = &cobra.Command{
	Use:   "complete [lesson id] [correct] [total]",
	Short: "Record a lesson attempt for the active profile",
	Long: `Record a lesson attempt, award XP and refresh the JLPT estimate.
Lesson IDs look like n5-lesson-3; the level is taken from the prefix.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		correct, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("❌ Invalid correct count %q", args[1])
		}
		total, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("❌ Invalid question count %q", args[2])
		}
		section, err := models.ParseSectionType(lessonSection)
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		outcome, err := a.store.CompleteLesson(ctx, progress.LessonAttempt{
			LessonID:    args[0],
			SectionType: section,
			Correct:     correct,
			Total:       total,
		})
		if err != nil {
			return err
		}

		if outcome.Passed {
			fmt.Printf("🎉 Passed %s with %d%%\n", outcome.Record.LessonID, outcome.Record.Score)
		} else {
			fmt.Printf("📝 Recorded %s at %d%%, not passed yet\n", outcome.Record.LessonID, outcome.Record.Score)
		}
		fmt.Printf("Section score: %d\n", outcome.Record.SectionScore)
		fmt.Printf("XP: +%d (total %d)\n", outcome.XPAwarded, outcome.TotalXP)
		if outcome.Estimate != nil {
			fmt.Printf("Estimated %s score: %d/180\n", outcome.Record.Level, outcome.Estimate.Total)
		}
		return nil
	},
}

func init() {
	lessonCompleteCmd.Flags().StringVar(&lessonSection, "section", string(models.SectionLanguageKnowledge), "languageKnowledge, reading or listening")
	lessonCmd.AddCommand(lessonCompleteCmd)
	rootCmd.AddCommand(lessonCmd)
}
