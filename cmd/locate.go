package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/school-finder/pkg/geocode"
)

var locateCmd = &cobra.Command{
	Use:   "locate <postal-code>",
	Short: "Geocode a 6-digit postal code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("locate"); err != nil {
			return err
		}
		runLocate(cmd.Context(), newGeocoder(cfg), args[0], os.Stdout, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(ctx context.Context, gc geocode.Client, postal string, stdout, stderr io.Writer) {
	res := locatePostal(ctx, gc, postal, stderr)
	if res == nil {
		return
	}
	_, _ = fmt.Fprintf(stdout, "%.6f, %.6f\n", res.Latitude, res.Longitude)
	if res.Address != "" {
		_, _ = fmt.Fprintln(stdout, res.Address)
	}
}
