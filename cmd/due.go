package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/nihonwa/internal/progress"
	"github.com/example/nihonwa/internal/spaced_repetition"
	"github.com/example/nihonwa/pkg/models"
)

var (
	dueKind  string
	dueLimit int
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show items due for review at the active profile's level",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.ItemKind(dueKind)
		if !kind.Valid() {
			return fmt.Errorf("❌ Kind must be vocabulary, kanji or grammar, got %q", dueKind)
		}

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

		items, err := a.store.DueItems(ctx, kind, profile.CurrentLevel, dueLimit)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Printf("✅ No %s due at %s! Good job.\n", kind, profile.CurrentLevel)
			return nil
		}

		fmt.Printf("🔥 %d %s due at %s:\n\n", len(items), kind, profile.CurrentLevel)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Term\tReading\tMeaning\tInterval\tEase")
		fmt.Fprintln(w, "----\t-------\t-------\t--------\t----")
		for _, item := range items {
			interval, ease := "new", "-"
			if item.SRS != nil {
				interval = spaced_repetition.IntervalText(item.SRS.Interval)
				ease = fmt.Sprintf("%.2f", item.SRS.EaseFactor)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", item.Term, item.Reading, item.Meaning, interval, ease)
		}
		return w.Flush()
	},
}

func init() {
	dueCmd.Flags().StringVar(&dueKind, "kind", string(models.KindVocabulary), "vocabulary, kanji or grammar")
	dueCmd.Flags().IntVar(&dueLimit, "limit", 0, "show at most this many items (0 for all)")
	rootCmd.AddCommand(dueCmd)
}
