package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/formscan/internal/config"
	"github.com/jackzampolin/formscan/internal/envfile"
	"github.com/jackzampolin/formscan/internal/home"
	"github.com/jackzampolin/formscan/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage formscan configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := home.New(homePath)
		if err != nil {
			return err
		}
		if err := homeDir.EnsureExists(); err != nil {
			return err
		}
		if homeDir.ConfigExists() {
			return fmt.Errorf("config already exists at %s", homeDir.ConfigPath())
		}

		if err := config.WriteDefault(homeDir.ConfigPath()); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", homeDir.ConfigPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration and connection settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, mgr, err := setup()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		settings, err := envfile.Read(settingsPath(homeDir, cfg))
		if err != nil {
			return err
		}
		// Don't echo the key itself.
		if _, ok := settings["AZURE_OPENAI_API_KEY"]; ok {
			settings["AZURE_OPENAI_API_KEY"] = "********"
		}

		return output.Print(map[string]any{
			"config":   cfg,
			"settings": settings,
		})
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
