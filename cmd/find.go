package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/school-finder/internal/config"
	"github.com/sells-group/school-finder/internal/dataset"
	"github.com/sells-group/school-finder/internal/finder"
	"github.com/sells-group/school-finder/internal/geo"
	"github.com/sells-group/school-finder/internal/model"
	"github.com/sells-group/school-finder/internal/report"
	"github.com/sells-group/school-finder/pkg/geocode"
)

// findOptions are the parsed flags of the find command.
type findOptions struct {
	Dataset     string
	Score       int
	MaxCutoff   int
	Historical  bool
	Affiliated  string
	Gender      string
	Languages   []string
	MaxDistance float64
	Sort        string
	Town        string
	Postal      string
	Lat, Lng    float64
	HasPoint    bool
	Format      string
	Output      string
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "List schools a student can apply to",
	Long: `List the schools whose cut-off admits the given PSLE AL score.

The score selects the posting groups to evaluate (PG3/IP up to 20, PG2/PG3 at
21-22, PG2 at 23-24, PG1/PG2 at 25, PG1 from 26). A school is listed when any
of those groups has a cut-off between the score and --max-cutoff.

Use --town or --postal to measure distances and limit results to
--max-distance kilometres.`,
	Example: `  school-finder find --score 22
  school-finder find --score 18 --lang HCL --gender girls --historical
  school-finder find --score 24 --postal 560123 --max-distance 5 --sort distance
  school-finder find --score 12 --town Bedok --format geojson --output bedok.geojson`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("find"); err != nil {
			return err
		}
		opts := parseFindOptions(cmd, cfg)
		return runFind(cmd.Context(), cfg, newGeocoder(cfg), opts, os.Stdout, os.Stderr)
	},
}

func init() {
	f := findCmd.Flags()
	f.String("dataset", "", "dataset CSV (default: data.dataset)")
	f.Int("score", finder.MinScore, "PSLE AL score (4-30)")
	f.Int("max-cutoff", finder.MaxScore, "upper bound on a school's cut-off")
	f.Bool("historical", false, "use the highest cut-off across all years")
	f.String("affiliated", "", "primary-school affiliation: use this school's affiliated cut-offs")
	f.String("gender", string(finder.GenderAll), "all, mixed, boys or girls")
	f.StringSlice("lang", nil, "required higher mother tongue (HCL, HTL, HML); repeatable")
	f.Float64("max-distance", finder.MaxDistanceKM, "radius in km (1-50) around the reference point")
	f.String("sort", string(finder.SortByName), "name or distance")
	f.String("town", "", "use a town centroid as the reference point")
	f.String("postal", "", "use a geocoded 6-digit postal code as the reference point")
	f.Float64("lat", 0, "reference latitude (with --lng)")
	f.Float64("lng", 0, "reference longitude (with --lat)")
	f.String("format", string(report.FormatTable), "table, json, geojson or xlsx")
	f.StringP("output", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(findCmd)
}

// parseFindOptions reads the flags, falling back to config for the filter
// defaults the user did not set.
func parseFindOptions(cmd *cobra.Command, c *config.Config) findOptions {
	f := cmd.Flags()
	var o findOptions
	o.Dataset, _ = f.GetString("dataset")
	o.Score, _ = f.GetInt("score")
	o.MaxCutoff, _ = f.GetInt("max-cutoff")
	o.Historical, _ = f.GetBool("historical")
	o.Affiliated, _ = f.GetString("affiliated")
	o.Gender, _ = f.GetString("gender")
	o.Languages, _ = f.GetStringSlice("lang")
	o.MaxDistance, _ = f.GetFloat64("max-distance")
	o.Sort, _ = f.GetString("sort")
	o.Town, _ = f.GetString("town")
	o.Postal, _ = f.GetString("postal")
	o.Lat, _ = f.GetFloat64("lat")
	o.Lng, _ = f.GetFloat64("lng")
	o.HasPoint = f.Changed("lat") || f.Changed("lng")
	o.Format, _ = f.GetString("format")
	o.Output, _ = f.GetString("output")

	if c == nil {
		return o
	}
	if !f.Changed("score") {
		o.Score = c.Filter.Score
	}
	if !f.Changed("max-cutoff") {
		o.MaxCutoff = c.Filter.MaxCutoff
	}
	if !f.Changed("max-distance") {
		o.MaxDistance = c.Filter.MaxDistanceKM
	}
	if !f.Changed("sort") && c.Filter.Sort != "" {
		o.Sort = c.Filter.Sort
	}
	if !f.Changed("gender") && c.Filter.Gender != "" {
		o.Gender = c.Filter.Gender
	}
	return o
}

// buildFilterState converts options into a query. Town names are checked
// against towns.
func buildFilterState(o findOptions, towns geo.Towns) (finder.FilterState, error) {
	st := finder.DefaultFilterState()
	st.Score = o.Score
	st.MaxCutoff = o.MaxCutoff
	st.HistoricalMax = o.Historical
	st.Affiliated = o.Affiliated
	st.MaxDistanceKM = o.MaxDistance

	g, err := finder.ParseGenderFilter(o.Gender)
	if err != nil {
		return st, err
	}
	st.Gender = g

	sort, err := finder.ParseSortMode(o.Sort)
	if err != nil {
		return st, err
	}
	st.Sort = sort

	for _, raw := range o.Languages {
		l, err := model.ParseLanguage(raw)
		if err != nil {
			return st, err
		}
		st.Languages = append(st.Languages, l)
	}

	if o.Town != "" {
		if _, ok := towns.Lookup(o.Town); !ok {
			return st, eris.Errorf("unknown town %q (run `school-finder towns` for the list)", o.Town)
		}
		st.UseTown(o.Town)
	}
	if o.HasPoint {
		p, ok := geo.ParsePoint(strconv.FormatFloat(o.Lat, 'f', -1, 64), strconv.FormatFloat(o.Lng, 'f', -1, 64))
		if !ok {
			return st, eris.Errorf("invalid coordinates %v, %v", o.Lat, o.Lng)
		}
		st.UsePoint(p)
	}

	st.Normalize()
	return st, nil
}

// locatePostal geocodes a postal code for find. Failures are reported on
// errOut as a one-line message and yield nil.
func locatePostal(ctx context.Context, gc geocode.Client, postal string, errOut io.Writer) *geocode.Result {
	res, err := gc.LocatePostalCode(ctx, postal)
	switch {
	case errors.Is(err, geocode.ErrInvalidPostalCode):
		_, _ = fmt.Fprintln(errOut, "Please enter a valid 6-digit postal code")
		return nil
	case err != nil:
		zap.L().Warn("postal geocode failed", zap.String("postal", postal), zap.Error(err))
		_, _ = fmt.Fprintln(errOut, "Error geocoding postal code")
		return nil
	case !res.Matched:
		_, _ = fmt.Fprintln(errOut, "Postal code not found")
		return nil
	}
	return res
}

func runFind(ctx context.Context, c *config.Config, gc geocode.Client, o findOptions, stdout, stderr io.Writer) error {
	format, err := report.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	if format.Binary() && (o.Output == "" || o.Output == "-") {
		return eris.Errorf("--format %s requires --output", format)
	}

	engine, err := newEngine(c)
	if err != nil {
		return err
	}

	st, err := buildFilterState(o, engine.Towns())
	if err != nil {
		return err
	}

	if o.Postal != "" {
		if res := locatePostal(ctx, gc, o.Postal, stderr); res != nil {
			st.UsePoint(res.Point())
		}
	}

	path := stringFlagOr(o.Dataset, c.Data.Dataset)
	schools, err := dataset.LoadFile(path)
	if err != nil {
		return err
	}
	zap.L().Debug("dataset loaded", zap.String("path", path), zap.Int("schools", len(schools)))

	results := engine.Run(schools, st)

	w, closeOut, err := openOutput(o.Output, stdout)
	if err != nil {
		return err
	}
	if err := report.Render(w, format, results); err != nil {
		_ = closeOut()
		return err
	}
	return eris.Wrap(closeOut(), "close output")
}
