package main

import (
	"github.com/ludo-technologies/qadash/service"
	"github.com/spf13/cobra"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve quality gate tools over MCP",
		Long: `Start a Model Context Protocol server on stdio exposing the
evaluate_repository, list_runs and repository_trend tools.

Logs are written to stderr; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: runMCP,
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().StringP("work-dir", "w", "", "Directory holding the tool outputs (overrides paths.work_dir)")

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	workDir, _ := cmd.Flags().GetString("work-dir")

	env, err := loadEnvironment(configPath, false)
	if err != nil {
		return err
	}
	if workDir != "" {
		env.cfg.Paths.WorkDir = workDir
	}

	store, err := openHistory(env.cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	policy := service.NewConfigurationLoader().ToRequest(env.cfg).Policy
	quality := service.NewQualityServiceFromConfig(env.cfg, env.logger)

	env.logger.Info("mcp server starting", "work_dir", env.cfg.Paths.WorkDir, "history", env.cfg.History.Backend)
	return service.ServeMCP(quality, store, policy)
}
