// Package enrich fills in dataset columns from outside sources: OneMap
// coordinates, cached coordinate files and the published higher mother
// tongue lists.
package enrich

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/school-finder/internal/dataset"
	"github.com/sells-group/school-finder/pkg/geocode"
)

// Failure is a school that could not be geocoded.
type Failure struct {
	Name    string
	Address string
}

// Report is the outcome of a geocoding run.
type Report struct {
	RunID    string
	Total    int
	Geocoded int
	Failures []Failure
}

// Summary prints the end-of-run totals and the failure list.
func (r *Report) Summary(w io.Writer) {
	fmt.Fprintf(w, "\nSummary: %d/%d schools successfully geocoded\n", r.Geocoded, r.Total) //nolint:errcheck
	if len(r.Failures) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSchools that failed to geocode:") //nolint:errcheck
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  - %s: %s\n", f.Name, f.Address) //nolint:errcheck
	}
}

// Geocoder resolves every row's Address to Latitude and Longitude.
type Geocoder struct {
	client geocode.Client
	out    io.Writer
}

// NewGeocoder creates a Geocoder that prints progress to out.
func NewGeocoder(client geocode.Client, out io.Writer) *Geocoder {
	if out == nil {
		out = io.Discard
	}
	return &Geocoder{client: client, out: out}
}

// Run geocodes the table in place, one row at a time. A lookup error is
// logged and counted as not found. Only context cancellation stops the run.
func (g *Geocoder) Run(ctx context.Context, t *dataset.Table) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), Total: t.Len()}
	log := zap.L().With(zap.String("run_id", rep.RunID))
	log.Info("geocoding started", zap.Int("schools", rep.Total))

	t.EnsureColumn(dataset.ColLatitude)
	t.EnsureColumn(dataset.ColLongitude)

	for i := 0; i < t.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return rep, eris.Wrap(err, "enrich: geocoding interrupted")
		}

		name := t.Get(i, dataset.ColName)
		addr := t.Get(i, dataset.ColAddress)
		fmt.Fprintf(g.out, "[%d/%d] Geocoding: %s\n", i+1, rep.Total, name) //nolint:errcheck
		fmt.Fprintf(g.out, "  Address: %s\n", addr)                         //nolint:errcheck

		res, err := g.client.Search(ctx, addr)
		if err != nil {
			if ctx.Err() != nil {
				return rep, eris.Wrap(ctx.Err(), "enrich: geocoding interrupted")
			}
			log.Warn("geocode failed", zap.String("school", name), zap.Error(err))
			res = &geocode.Result{Matched: false}
		}

		if res.Matched {
			lat, lng := formatCoord(res.Latitude), formatCoord(res.Longitude)
			t.Set(i, dataset.ColLatitude, lat)
			t.Set(i, dataset.ColLongitude, lng)
			rep.Geocoded++
			fmt.Fprintf(g.out, "  ✓ Success: %s, %s\n\n", lat, lng) //nolint:errcheck
			continue
		}

		t.Set(i, dataset.ColLatitude, "")
		t.Set(i, dataset.ColLongitude, "")
		rep.Failures = append(rep.Failures, Failure{Name: name, Address: addr})
		fmt.Fprint(g.out, "  ✗ Not found\n\n") //nolint:errcheck
	}

	log.Info("geocoding finished",
		zap.Int("geocoded", rep.Geocoded),
		zap.Int("failed", len(rep.Failures)),
	)
	return rep, nil
}
