package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lexai-app/lexai/internal/config"
	tuiconfig "github.com/lexai-app/lexai/internal/tui/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify LexAI configuration",
		Long: `View or modify LexAI configuration.

Without arguments, displays the current configuration.
Use subcommands to edit settings or create a config file.`,
		RunE: runConfigShow,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
		initCmd,
		&cobra.Command{
			Use:   "edit",
			Short: "Edit the configuration interactively",
			Args:  cobra.NoArgs,
			RunE:  runConfigEdit,
		},
	)
	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintf(out, "  2. %s\n", filepath.Join(".", "config.yaml"))
	fmt.Fprintln(out, "\nEnvironment variables: LEXAI_* (e.g., LEXAI_BACKEND_URL)")
	return nil
}

const configHeader = `# LexAI configuration
# Environment variables override these values: LEXAI_BACKEND_URL, LEXAI_STORAGE_BACKEND, ...
# storage.backend is one of: file, memory, redis
# logging.level is one of: debug, info, warn, error

`

func runConfigInit(cmd *cobra.Command, force bool) error {
	configFile := config.ConfigFile()
	if _, err := os.Stat(configFile); err == nil && !force {
		return fmt.Errorf("config file already exists at %s\nUse 'lexai config edit' to modify values or --force to overwrite", configFile)
	}

	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configFile, append([]byte(configHeader), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	saved, err := tuiconfig.Run()
	if err != nil {
		return err
	}
	if saved {
		fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", config.ConfigFile())
	}
	return nil
}
