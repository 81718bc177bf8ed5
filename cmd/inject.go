package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/school-finder/internal/dataset"
	"github.com/sells-group/school-finder/internal/enrich"
)

var injectCmd = &cobra.Command{
	Use:   "inject-coords [input-csv]",
	Short: "Fill Latitude/Longitude from a cached coordinates file",
	Long: `Fill Latitude and Longitude from a JSON file mapping school names to
{"latitude": ..., "longitude": ...}. Names must match exactly; unmatched
schools get empty coordinates and are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("inject-coords"); err != nil {
			return err
		}
		input := cfg.Data.Dataset
		if len(args) == 1 {
			input = args[0]
		}
		coords, _ := cmd.Flags().GetString("coords")
		output, _ := cmd.Flags().GetString("output")
		return runInject(input, stringFlagOr(output, input), stringFlagOr(coords, cfg.Data.CoordinatesFile), os.Stdout)
	},
}

func init() {
	injectCmd.Flags().StringP("coords", "c", "", "coordinates JSON (default: data.coordinates_file)")
	injectCmd.Flags().StringP("output", "o", "", "output CSV (default: overwrite the input)")
	rootCmd.AddCommand(injectCmd)
}

func runInject(input, output, coordsPath string, out io.Writer) error {
	coords, err := enrich.LoadCoordinates(coordsPath)
	if err != nil {
		return err
	}
	tbl, err := dataset.ReadTableFile(input)
	if err != nil {
		return err
	}

	rep := enrich.InjectCoordinates(tbl, coords)
	if err := tbl.WriteFile(output); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Processed %d schools\n", rep.Total)
	_, _ = fmt.Fprintf(out, "  Matched: %d\n", rep.Matched)
	_, _ = fmt.Fprintf(out, "  Unmatched: %d\n", len(rep.Unmatched))
	if len(rep.Unmatched) > 0 {
		_, _ = fmt.Fprintln(out, "\nUnmatched schools:")
		for _, name := range rep.Unmatched {
			_, _ = fmt.Fprintf(out, "  - %s\n", name)
		}
	}
	_, _ = fmt.Fprintf(out, "\nOutput written to: %s\n", output)
	return nil
}
