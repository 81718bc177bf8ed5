package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/school-finder/internal/config"
	"github.com/sells-group/school-finder/internal/resilience"
	"github.com/sells-group/school-finder/internal/sgschool"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Rebuild the dataset from sgschooling.com",
	Long: `Fetch the current-year cut-off listing and every school's detail page from
sgschooling.com and write a fresh dataset CSV.

Affiliated rows and schools without any current-year cut-off are skipped.
Requests are spaced by scrape.request_delay_ms and retried on transient
errors. A school whose detail page fails keeps its listing data.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		fetcher := sgschool.NewFetcher(
			cfg.Scrape.UserAgent,
			time.Duration(cfg.Scrape.RequestDelayMs)*time.Millisecond,
			time.Duration(cfg.Scrape.TimeoutSecs)*time.Second,
			resilience.PolicyFromConfig(cfg.Scrape.MaxRetries, 4000),
		)
		return runScrape(ctx, cfg, fetcher, stringFlagOr(output, cfg.Scrape.Output), os.Stdout)
	},
}

func init() {
	scrapeCmd.Flags().StringP("output", "o", "", "output CSV (default: scrape.output)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(ctx context.Context, c *config.Config, g sgschool.Getter, output string, out io.Writer) error {
	history := c.Data.HistoryYears()
	s, err := sgschool.NewScraper(g, c.Scrape.BaseURL, c.Scrape.MainPath, c.Data.CurrentYear, history)
	if err != nil {
		return err
	}

	schools, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if len(schools) == 0 {
		return eris.New("scrape: no schools to write")
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "scrape: create %s", dir)
		}
	}
	if err := sgschool.ToTable(schools, c.Data.CurrentYear, history).WriteFile(output); err != nil {
		return err
	}

	zap.L().Info("scrape complete", zap.Int("schools", len(schools)), zap.String("output", output))
	_, _ = fmt.Fprintf(out, "Exported %d schools to %s\n", len(schools), output)
	return nil
}
