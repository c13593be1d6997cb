package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Kerhoff/GiftMind/internal/config"
	"github.com/Kerhoff/GiftMind/migrations"
)

func newMigrateCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the store service database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Migrate(migrations.FS)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (one step by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.MigrateDown(migrations.FS, steps)
		},
	})

	return cmd
}

func (a *App) openDatabase(cmd *cobra.Command) (*config.Database, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	db, err := config.NewDatabase(cmd.Context(), a.cfg.DatabaseURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("steps must be a positive number, got %q", args[0])
	}
	return steps, nil
}
