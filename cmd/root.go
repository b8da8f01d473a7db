package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/example/nihonwa/internal/config"
	"github.com/example/nihonwa/internal/database"
	"github.com/example/nihonwa/internal/logger"
	"github.com/example/nihonwa/internal/progress"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "nihonwa",
	Short: "JLPT study companion with spaced repetition",
	Long: `Nihonwa tracks Japanese study progress for the JLPT.
It schedules vocabulary, kanji and grammar reviews with SM-2,
records lesson results and estimates your JLPT score.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default .env)")
}

// app bundles everything a command needs
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *sqlx.DB
	items *database.ItemRepository
	store *progress.Store
}

func openApp(ctx context.Context) (*app, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database())
	if err != nil {
		log.Sync()
		return nil, err
	}

	items := database.NewItemRepository(db)
	store, err := progress.New(ctx, database.NewStateRepository(db), log, progress.WithItemStore(items))
	if err != nil {
		db.Close()
		log.Sync()
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db, items: items, store: store}, nil
}

func (a *app) Close() {
	a.db.Close()
	a.log.Sync()
}
