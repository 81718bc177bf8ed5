package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/school-finder/internal/dataset"
	"github.com/sells-group/school-finder/internal/enrich"
	"github.com/sells-group/school-finder/pkg/geocode"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Geocode every school address into Latitude/Longitude",
	Long: `Geocode the Address of every school in the dataset through OneMap, one
request at a time, and write Latitude and Longitude back to the same file.

Schools that cannot be geocoded get empty coordinates and are listed at the
end. Per-school failures never fail the command.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("dataset")
		return runEnrich(ctx, newGeocoder(cfg), stringFlagOr(path, cfg.Data.Dataset), os.Stdout)
	},
}

func init() {
	enrichCmd.Flags().String("dataset", "", "dataset CSV to update in place (default: data.dataset)")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(ctx context.Context, gc geocode.Client, path string, out io.Writer) error {
	_, _ = fmt.Fprintf(out, "Reading %s...\n", path)
	tbl, err := dataset.ReadTableFile(path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Found %d schools to geocode\n\n", tbl.Len())

	rep, err := enrich.NewGeocoder(gc, out).Run(ctx, tbl)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Writing updated CSV...")
	if err := tbl.WriteFile(path); err != nil {
		return eris.Wrap(err, "enrich: write dataset")
	}
	rep.Summary(out)
	return nil
}
