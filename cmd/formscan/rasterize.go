package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/formscan/internal/output"
	"github.com/jackzampolin/formscan/internal/raster"
)

var rasterizeCmd = &cobra.Command{
	Use:   "rasterize <pdf>",
	Short: "Render a PDF into a single stitched composite image",
	Long: `Rasterize renders every page of the PDF at the library's default
resolution and stitches them vertically, in page order, into one JPEG
written next to the input file.

The composite must stay under the vision endpoint's 20 MB input limit;
formscan warns when it doesn't but does not split or resize.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := raster.Rasterize(cmd.Context(), args[0], slog.Default())
		if err != nil {
			return err
		}
		return output.Print(result)
	},
}
