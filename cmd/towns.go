package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/school-finder/internal/geo"
)

var townsCmd = &cobra.Command{
	Use:   "towns",
	Short: "List the towns usable with find --town",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("towns"); err != nil {
			return err
		}
		towns, err := geo.LoadTowns(cfg.Data.TownsFile)
		if err != nil {
			return err
		}
		return formatTowns(os.Stdout, towns)
	},
}

func init() {
	rootCmd.AddCommand(townsCmd)
}

// formatTowns writes the towns alphabetically with their centroids.
func formatTowns(out io.Writer, towns geo.Towns) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TOWN\tLAT\tLNG")
	for _, name := range towns.Names() {
		p, _ := towns.Lookup(name)
		_, _ = fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", name, p.Y(), p.X())
	}
	return w.Flush()
}
