// Package cmd implements the lexai command line.
package cmd

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/lexai-app/lexai/internal/config"
	"github.com/lexai-app/lexai/internal/tui"
	"github.com/lexai-app/lexai/internal/tui/keymap"
	"github.com/lexai-app/lexai/internal/tui/screen"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the lexai command tree. Every call returns fresh
// commands, so flag values never leak from one execution to the next.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lexai",
		Short: "Terminal client for the LexAI legal practice assistant",
		Long: `LexAI is a terminal client for the LexAI legal practice backend.

Without a subcommand it starts the interactive interface: dashboard, legal
chat, cases, document analysis and document generation. The subcommands
drive the same session and backend from scripts.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
		RunE:              runTUI,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/lexai/config.yaml)")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newHealthCmd(),
		newCasesCmd(),
		newChatCmd(),
		newCategoriesCmd(),
		newAnalyzeCmd(),
		newGenerateCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func initConfig(cmd *cobra.Command, _ []string) error {
	// Defaults first so they're available even without a config file
	config.SetDefaults()

	cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LEXAI")
	// LEXAI_BACKEND_URL for backend.url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	watchConfig(a)

	deps := screen.Deps{
		API:         a.client,
		Shell:       a.shell,
		Store:       a.store,
		Logger:      a.logger,
		Keys:        keymap.Default(),
		RecentLimit: a.cfg.TUI.RecentLimit,
	}
	a.logger.Info("starting tui", "backend", a.cfg.Backend.URL, "storage", a.cfg.Storage.Backend)
	return tui.New(deps, a.cfg.TUI).Run()
}

// watchConfig logs edits to the config file while the interface runs. The
// running program keeps the settings it started with.
func watchConfig(a *app) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if _, err := config.Load(); err != nil {
			a.logger.Warn("config file changed and is now invalid",
				"file", e.Name,
				"error", err.Error(),
			)
			return
		}
		a.logger.Info("config file changed, restart to apply",
			"file", e.Name,
			"op", e.Op.String(),
		)
	})
	viper.WatchConfig()
}
