package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/formscan/internal/config"
	"github.com/jackzampolin/formscan/internal/extract"
)

var extractSchemaFile string

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Submit a composite image to the vision model and print the result",
	Long: `Extract base64-encodes the composite image, embeds it with the
extraction instructions and target schema in a chat request, and prints
the model's first response choice verbatim.

The request is made once: no retries, no response validation. Connection
settings come from the settings file written by 'formscan provision',
overridable in config.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, mgr, err := setup()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		provider, err := extract.BuildProvider(cfg, settingsPath(homeDir, cfg))
		if err != nil {
			return err
		}

		_, err = extract.Run(cmd.Context(), extract.Request{
			ImagePath:  args[0],
			SchemaPath: schemaFile(cfg),
			Provider:   provider,
			Logger:     slog.Default(),
		})
		if err != nil {
			// The failure indication is already printed; keep the error for
			// the non-zero exit without repeating it.
			cmd.SilenceErrors = true
		}
		return err
	},
}

// schemaFile resolves the extraction schema path from flag then config.
func schemaFile(cfg *config.Config) string {
	if extractSchemaFile != "" {
		return extractSchemaFile
	}
	return cfg.SchemaFile
}

func init() {
	extractCmd.Flags().StringVar(&extractSchemaFile, "schema", "", "extraction schema file (default: embedded example schema)")
}
