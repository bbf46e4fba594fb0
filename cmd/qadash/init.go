package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/qadash/internal/config"
	"github.com/ludo-technologies/qadash/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a qadash configuration file",
		Long: `Generate a documented qadash configuration file with sensible defaults.

By default, creates qadash.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create qadash.yaml in current directory
  qadash init

  # Custom output path
  qadash init --config ci/qadash.yaml

  # Overwrite existing file
  qadash init --force

  # Generate smaller config with essential options only
  qadash init --minimal

  # Strict coverage preset
  qadash init --strictness strict

  # Interactive setup wizard
  qadash init --interactive
  qadash init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().String("strictness", string(config.StrictnessStandard),
		"Policy preset: relaxed, standard, strict")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	// Get flag values from command
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	strictness, _ := cmd.Flags().GetString("strictness")
	interactive, _ := cmd.Flags().GetBool("interactive")

	opts := config.TemplateOptions{Strictness: config.Strictness(strictness)}
	if _, ok := config.GetStrictnessPresets()[opts.Strictness]; !ok {
		return fmt.Errorf("unknown strictness %q (use relaxed, standard or strict)", strictness)
	}

	// Run interactive setup if requested
	if interactive {
		var err error
		opts, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	// Check if file exists
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	// Check if parent directory exists
	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	// Generate config content
	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(opts)
	}

	// Write to file
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Print success message with absolute path if possible, otherwise use relative path
	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", displayPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'qadash check' to evaluate your repositories.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.TemplateOptions, string, error) {
	var opts config.TemplateOptions

	fmt.Println()
	fmt.Println("qadash Configuration Setup")
	fmt.Println("==========================")
	fmt.Println()

	// Strictness selection
	presets := config.GetStrictnessPresets()
	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", presets[config.StrictnessStandard].Description, config.StrictnessStandard},
		{"Relaxed", presets[config.StrictnessRelaxed].Description, config.StrictnessRelaxed},
		{"Strict", presets[config.StrictnessStrict].Description, config.StrictnessStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should the quality gate be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	opts.Strictness = strictnessLevels[strictnessIdx].Value

	fmt.Println()

	// Repository list
	reposPrompt := promptui.Prompt{
		Label: "Repositories (comma separated, empty = discover from work dir)",
	}
	repos, err := reposPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("repository input cancelled: %w", err)
	}
	opts.Repositories = splitList(repos)

	workDirPrompt := promptui.Prompt{
		Label:   "Work directory with tool outputs",
		Default: constants.DefaultWorkDir,
	}
	if opts.WorkDir, err = workDirPrompt.Run(); err != nil {
		return opts, "", fmt.Errorf("work directory input cancelled: %w", err)
	}

	reposDirPrompt := promptui.Prompt{
		Label:   "Directory with repository checkouts",
		Default: constants.DefaultRepositoriesDir,
	}
	if opts.RepositoriesDir, err = reposDirPrompt.Run(); err != nil {
		return opts, "", fmt.Errorf("checkout directory input cancelled: %w", err)
	}

	fmt.Println()

	// History backend selection
	backends := []string{
		constants.HistoryBackendNone,
		constants.HistoryBackendSQLite,
		constants.HistoryBackendMySQL,
		constants.HistoryBackendPostgreSQL,
	}
	backendPrompt := promptui.Select{
		Label: "Record run history in",
		Items: backends,
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("history backend selection cancelled: %w", err)
	}
	opts.HistoryBackend = backends[backendIdx]

	fmt.Println()

	// Output path prompt
	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("output path input cancelled: %w", err)
	}

	// Use default if empty
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return opts, outputPath, nil
}

// splitList splits a comma separated answer into trimmed, non-empty items
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
