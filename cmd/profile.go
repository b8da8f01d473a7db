package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/nihonwa/internal/progress"
	"github.com/example/nihonwa/pkg/models"
)

var profileLevel string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage learner profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer a.Close()

		profiles := a.store.Profiles()
		if len(profiles) == 0 {
			fmt.Println("No profiles yet. Create one with: nihonwa profile create <name>")
			return nil
		}

		active, _ := a.store.ActiveProfile()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tName\tLevel\tLast Active\tID")
		fmt.Fprintln(w, "\t----\t-----\t-----------\t--")
		for _, p := range profiles {
			marker := ""
			if p.ID == active.ID {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				marker, p.Name, p.CurrentLevel, p.LastActive.Format("2006-01-02"), p.ID)
		}
		return w.Flush()
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a profile, activating it when none is active",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := models.ParseLevel(profileLevel)
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.store.CreateProfile(ctx, models.UserProfile{Name: strings.Join(args, " "), CurrentLevel: level})
		if err != nil {
			return err
		}
		fmt.Printf("✅ Created profile %s (%s)\n", profile.Name, profile.CurrentLevel)

		if _, ok := a.store.ActiveProfile(); !ok {
			if err := a.store.SetActiveProfile(ctx, profile.ID); err != nil {
				return err
			}
			fmt.Println("It is now the active profile.")
		}
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use [name or id]",
	Short: "Switch the active profile",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := findProfile(a.store, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := a.store.SetActiveProfile(ctx, profile.ID); err != nil {
			return err
		}
		fmt.Printf("▶ Now studying as %s (%s)\n", profile.Name, profile.CurrentLevel)
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete [name or id]",
	Short: "Delete a profile and all of its progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := findProfile(a.store, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := a.store.DeleteProfile(ctx, profile.ID); err != nil {
			return err
		}
		fmt.Printf("🗑 Deleted profile %s\n", profile.Name)
		return nil
	},
}

// findProfile matches an ID or a case-insensitive name
func findProfile(store *progress.Store, key string) (models.UserProfile, error) {
	for _, p := range store.Profiles() {
		if p.ID == key || strings.EqualFold(p.Name, key) {
			return p, nil
		}
	}
	return models.UserProfile{}, fmt.Errorf("❌ %w: %q", progress.ErrProfileNotFound, key)
}

func init() {
	profileCreateCmd.Flags().StringVar(&profileLevel, "level", string(models.N5), "starting JLPT level")
	profileCmd.AddCommand(profileListCmd, profileCreateCmd, profileUseCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}
