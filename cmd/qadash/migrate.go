package main

import (
	"fmt"

	"github.com/ludo-technologies/qadash/service"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Manage the history database schema",
		Long: `Apply or roll back the embedded schema migrations of the history store.

Examples:
  # Migrate to the latest schema
  qadash migrate up

  # Migrate to a specific version
  qadash migrate up --to 2

  # Roll back every migration
  qadash migrate down

  # Show the applied version
  qadash migrate version`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE:      runMigrate,
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().Int("to", 0, "Target version for up (0 = latest)")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	action := "up"
	if len(args) == 1 {
		action = args[0]
	}

	configPath, _ := cmd.Flags().GetString("config")
	env, err := loadEnvironment(configPath, false)
	if err != nil {
		return err
	}
	backend, dsn := env.cfg.History.Backend, env.cfg.HistoryDSN()
	out := cmd.OutOrStdout()

	if action == "version" {
		version, dirty, err := service.HistoryVersion(backend, dsn)
		if err != nil {
			return err
		}
		if dirty {
			fmt.Fprintf(out, "History schema version %d (dirty)\n", version)
		} else {
			fmt.Fprintf(out, "History schema version %d\n", version)
		}
		return nil
	}

	target := -1
	if action == "down" {
		target = 0
	} else if to, _ := cmd.Flags().GetInt("to"); to > 0 {
		target = to
	}

	result, err := service.MigrateHistory(backend, dsn, target)
	if err != nil {
		return err
	}
	if !result.Changed {
		fmt.Fprintf(out, "History schema already at version %d\n", result.To)
		return nil
	}
	fmt.Fprintf(out, "Migrated history schema from version %d to %d\n", result.From, result.To)
	return nil
}
