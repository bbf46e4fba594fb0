package main

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/constants"
	"github.com/ludo-technologies/qadash/service"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the recorded runs",
		Long: `Inspect and manage the run history store configured by history.backend
(sqlite, mysql or postgresql).`,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	cmd.PersistentFlags().Bool("json", false, "Output as JSON")
	cmd.PersistentFlags().IntP("limit", "n", 20, "Maximum number of rows (0 = all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, func(ctx context.Context, store domain.HistoryStore) error {
				limit, _ := cmd.Flags().GetInt("limit")
				asJSON, _ := cmd.Flags().GetBool("json")
				runs, err := store.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				return service.WriteRunRecords(cmd.OutOrStdout(), runs, asJSON)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "trend <repository>",
		Short: "Show the gate results of one repository over time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, func(ctx context.Context, store domain.HistoryStore) error {
				limit, _ := cmd.Flags().GetInt("limit")
				asJSON, _ := cmd.Flags().GetBool("json")
				rows, err := store.RepositoryTrend(ctx, args[0], limit)
				if err != nil {
					return err
				}
				return service.WriteSnapshotRecords(cmd.OutOrStdout(), rows, asJSON)
			})
		},
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				prompt := promptui.Prompt{
					Label:     "Delete all recorded runs",
					IsConfirm: true,
				}
				if _, err := prompt.Run(); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			return withHistory(cmd, func(ctx context.Context, store domain.HistoryStore) error {
				if err := store.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			})
		},
	}
	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	cmd.AddCommand(clearCmd)

	return cmd
}

// withHistory opens the configured store for the duration of fn
func withHistory(cmd *cobra.Command, fn func(context.Context, domain.HistoryStore) error) error {
	configPath, _ := cmd.Flags().GetString("config")
	env, err := loadEnvironment(configPath, false)
	if err != nil {
		return err
	}
	if env.cfg.History.Backend == constants.HistoryBackendNone {
		return domain.NewConfigError("run history is disabled, set history.backend to sqlite, mysql or postgresql", nil)
	}

	store, err := openHistory(env.cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(cmd.Context(), store)
}
