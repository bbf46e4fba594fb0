package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/service"
	"github.com/spf13/cobra"
)

const defaultExportPrefix = ".qadash/export/qadash"

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the run history to Parquet",
		Long: `Export every recorded run and repository snapshot to two Parquet files,
<prefix>.runs.parquet and <prefix>.snapshots.parquet, for analysis in
DuckDB, pandas or a data warehouse.`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().StringP("output", "o", defaultExportPrefix, "Output file prefix")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	prefix, _ := cmd.Flags().GetString("output")

	env, err := loadEnvironment(configPath, false)
	if err != nil {
		return err
	}

	store, err := openHistory(env.cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	if dir := filepath.Dir(prefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewOutputError("failed to create export directory", err)
		}
	}

	summary, err := service.NewParquetExporter(store).Export(cmd.Context(), prefix)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d runs to %s\n", summary.Runs, summary.RunsFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d snapshots to %s\n", summary.Snapshots, summary.SnapshotsFile)
	return nil
}
