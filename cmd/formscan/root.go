package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/formscan/internal/config"
	"github.com/jackzampolin/formscan/internal/home"
	"github.com/jackzampolin/formscan/internal/output"
	"github.com/jackzampolin/formscan/version"
)

var (
	cfgFile      string
	homePath     string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "formscan",
	Short: "Structured data extraction from scanned forms with a vision LLM",
	Long: `Formscan turns scanned multi-page PDF forms into structured JSON using a
hosted multimodal model.

The workflow has three steps:
  - provision: deploy an Azure OpenAI account and vision model deployment
  - rasterize: render a PDF into a single vertically stitched composite image
  - extract:   submit the composite image with an extraction schema and print
               the model's JSON response`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.formscan/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homePath, "home", "", "formscan home directory (default: ~/.formscan)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.SetFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(rasterizeCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the home directory and configuration for a command run.
// The returned manager watches the config file, so long-running commands
// can pick up edits made while they work by calling Get again.
func setup() (*home.Dir, *config.Manager, error) {
	homeDir, err := home.New(homePath)
	if err != nil {
		return nil, nil, err
	}
	if err := homeDir.EnsureExists(); err != nil {
		return nil, nil, err
	}

	path := cfgFile
	if path == "" && homeDir.ConfigExists() {
		path = homeDir.ConfigPath()
	}

	manager, err := config.NewManager(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	manager.OnChange(func(cfg *config.Config) {
		slog.Info("configuration reloaded")
	})
	manager.WatchConfig()

	return homeDir, manager, nil
}

// settingsPath resolves the env-style settings file location.
func settingsPath(homeDir *home.Dir, cfg *config.Config) string {
	if cfg.SettingsFile != "" {
		return cfg.SettingsFile
	}
	return homeDir.SettingsPath()
}
