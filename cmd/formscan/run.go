package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/formscan/internal/extract"
	"github.com/jackzampolin/formscan/internal/raster"
)

var runCmd = &cobra.Command{
	Use:   "run <pdf>",
	Short: "Rasterize a PDF and extract its data in one step",
	Long: `Run performs the full pipeline: render the PDF into a composite image,
then submit it to the configured vision model and print the extracted JSON.
Provisioning must already have happened (or settings filled in by hand).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, mgr, err := setup()
		if err != nil {
			return err
		}

		rasterResult, err := raster.Rasterize(cmd.Context(), args[0], slog.Default())
		if err != nil {
			return err
		}

		// Rendering can take a while on large scans; pick up any config
		// edits made in the meantime before the paid request.
		cfg := mgr.Get()
		provider, err := extract.BuildProvider(cfg, settingsPath(homeDir, cfg))
		if err != nil {
			return err
		}

		_, err = extract.Run(cmd.Context(), extract.Request{
			ImagePath:  rasterResult.OutputPath,
			SchemaPath: schemaFile(cfg),
			Provider:   provider,
			Logger:     slog.Default(),
		})
		if err != nil {
			cmd.SilenceErrors = true
		}
		return err
	},
}
