package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/nihonwa/internal/excel"
	"github.com/example/nihonwa/pkg/models"
)

var (
	importKind         string
	importLevel        string
	importSheet        string
	importSkipIfLoaded bool
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import vocabulary, kanji or grammar from .xlsx, .csv or .yaml",
	Long: `Import learnable items from a spreadsheet, CSV or YAML dataset.
Columns are term, reading, meaning, examples (separated by "|"),
level and kind. Rows without a level or kind use --level and --kind.
Existing items with the same term keep their review history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.ItemKind(importKind)
		if !kind.Valid() {
			return fmt.Errorf("❌ Kind must be vocabulary, kanji or grammar, got %q", importKind)
		}
		level, err := models.ParseLevel(importLevel)
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		config := excel.DefaultImportConfig()
		config.FilePath = args[0]
		config.Kind = kind
		config.Level = level
		config.SheetName = importSheet
		config.SkipIfLoaded = importSkipIfLoaded

		result, err := excel.NewImporter(a.items, a.log).Import(ctx, config)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Processed %d rows: %d created, %d updated, %d skipped\n",
			result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		if len(result.Errors) > 0 {
			fmt.Printf("\n⚠️ %d rows had errors:\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Println("  -", e)
			}
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importKind, "kind", string(models.KindVocabulary), "default item kind")
	importCmd.Flags().StringVar(&importLevel, "level", string(models.N5), "default JLPT level")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name (default first sheet)")
	importCmd.Flags().BoolVar(&importSkipIfLoaded, "skip-if-loaded", false, "skip levels that already have items")
	rootCmd.AddCommand(importCmd)
}
