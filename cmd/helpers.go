package main

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/school-finder/internal/config"
	"github.com/sells-group/school-finder/internal/finder"
	"github.com/sells-group/school-finder/internal/geo"
	"github.com/sells-group/school-finder/internal/resilience"
	"github.com/sells-group/school-finder/pkg/geocode"
)

// newGeocoder builds the OneMap client from config.
func newGeocoder(c *config.Config) geocode.Client {
	opts := []geocode.Option{
		geocode.WithBaseURL(c.Geocode.BaseURL),
		geocode.WithRateInterval(time.Duration(c.Geocode.RateIntervalMs) * time.Millisecond),
		geocode.WithRetry(resilience.PolicyFromConfig(c.Geocode.MaxRetries, 0)),
	}
	if c.Geocode.TimeoutSecs > 0 {
		opts = append(opts, geocode.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Geocode.TimeoutSecs) * time.Second}))
	}
	return geocode.NewClient(opts...)
}

// newEngine builds a finder engine with the configured towns and years.
func newEngine(c *config.Config) (*finder.Engine, error) {
	towns, err := geo.LoadTowns(c.Data.TownsFile)
	if err != nil {
		return nil, err
	}
	return finder.NewEngine(
		finder.WithTowns(towns),
		finder.WithYears(c.Data.CurrentYear, c.Data.Years),
	), nil
}

// openOutput returns stdout for an empty path, otherwise a new file.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create output %s", path)
	}
	return f, f.Close, nil
}

// stringFlagOr returns the flag value when set, else def.
func stringFlagOr(value, def string) string {
	if value != "" {
		return value
	}
	return def
}
