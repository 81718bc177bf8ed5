// Package finder decides which schools a student can apply to.
//
// Engine.Run is a pure function of the school list and a FilterState: it
// applies the eligibility rules, the attribute filters and the proximity
// filter, then orders the survivors. Nothing is cached between calls.
package finder

import (
	"cmp"
	"slices"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/school-finder/internal/geo"
	"github.com/sells-group/school-finder/internal/model"
)

// DefaultCurrentYear is the newest year in the dataset.
const DefaultCurrentYear = 2025

// DefaultYears lists the years evaluated in historical-max mode.
var DefaultYears = []int{2025, 2024, 2023}

// Result is one school in the result set.
type Result struct {
	School *model.School

	// Scores is the display summary of the eligible groups' current-year cells.
	Scores string

	// DistanceKM is set only when a reference point is active.
	DistanceKM  float64
	HasDistance bool
}

// Results is the ordered output of a run.
type Results struct {
	Items []Result

	// Groups are the posting groups the score was evaluated under.
	Groups []model.Group

	// Reference is the effective reference point, nil when proximity
	// filtering was inactive.
	Reference *geom.Point
}

// Option configures an Engine.
type Option func(*Engine)

// WithBands replaces the posting-group bands.
func WithBands(b Bands) Option {
	return func(e *Engine) { e.bands = b }
}

// WithTowns replaces the town centroid table.
func WithTowns(t geo.Towns) Option {
	return func(e *Engine) { e.towns = t }
}

// WithYears sets the current year and the years used for historical max.
func WithYears(current int, years []int) Option {
	return func(e *Engine) {
		e.currentYear = current
		e.years = append([]int(nil), years...)
	}
}

// Engine holds the immutable policy tables used to evaluate a FilterState.
type Engine struct {
	bands       Bands
	towns       geo.Towns
	currentYear int
	years       []int
}

// NewEngine creates an Engine with the default bands, towns and years.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		bands:       DefaultBands(),
		towns:       geo.DefaultTowns(),
		currentYear: DefaultCurrentYear,
		years:       append([]int(nil), DefaultYears...),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Towns returns the engine's town table.
func (e *Engine) Towns() geo.Towns { return e.towns }

// CurrentYear returns the year whose columns are used by default.
func (e *Engine) CurrentYear() int { return e.currentYear }

// Run evaluates st against schools. The input slice is not modified.
func (e *Engine) Run(schools []model.School, st FilterState) Results {
	st.Normalize()

	groups := e.bands.Resolve(st.Score)
	ref := e.Reference(st)

	out := Results{Groups: groups, Reference: ref}
	for i := range schools {
		s := &schools[i]
		if !e.eligible(s, groups, st) {
			continue
		}
		if !matchesGender(s, st.Gender) || !offersAll(s, st.Languages) {
			continue
		}

		r := Result{School: s, Scores: FormatScores(s, groups, e.currentYear, st.Affiliated)}
		if ref != nil {
			if s.Location == nil {
				continue
			}
			d := geo.DistanceKM(ref, s.Location)
			if d > st.MaxDistanceKM {
				continue
			}
			r.DistanceKM = d
			r.HasDistance = true
		}
		out.Items = append(out.Items, r)
	}

	sortResults(out.Items, st.Sort, ref != nil)
	return out
}

// Reference returns the effective reference point: the located point if
// set, else the selected town's centroid, else nil.
func (e *Engine) Reference(st FilterState) *geom.Point {
	if st.Point != nil {
		return st.Point
	}
	if st.Town != "" {
		if p, ok := e.towns.Lookup(st.Town); ok {
			return p
		}
	}
	return nil
}

// eligible reports whether the school passes for any eligible group.
func (e *Engine) eligible(s *model.School, groups []model.Group, st FilterState) bool {
	for _, g := range groups {
		threshold, ok := e.threshold(s, g, st)
		if !ok {
			continue
		}
		if st.Score <= threshold && threshold <= st.MaxCutoff {
			return true
		}
	}
	return false
}

// threshold returns the school's candidate cut-off for a group: the current
// year's value, or the highest parseable value across all years in
// historical-max mode.
func (e *Engine) threshold(s *model.School, g model.Group, st FilterState) (int, bool) {
	if !st.HistoricalMax {
		return ParseScore(s.Cutoff(ResolveColumn(e.currentYear, g, s.Name, st.Affiliated)), g)
	}

	best, found := 0, false
	for _, year := range e.years {
		v, ok := ParseScore(s.Cutoff(ResolveColumn(year, g, s.Name, st.Affiliated)), g)
		if !ok {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

func matchesGender(s *model.School, f GenderFilter) bool {
	return f == "" || f == GenderAll || model.Gender(f) == s.Gender
}

func offersAll(s *model.School, langs []model.Language) bool {
	for _, l := range langs {
		if !s.Offers(l) {
			return false
		}
	}
	return true
}

// sortResults orders by distance when requested and a reference is active,
// otherwise by name. Both sorts are stable.
func sortResults(items []Result, mode SortMode, haveRef bool) {
	if mode == SortByDistance && haveRef {
		slices.SortStableFunc(items, func(a, b Result) int {
			return cmp.Compare(a.DistanceKM, b.DistanceKM)
		})
		return
	}
	slices.SortStableFunc(items, func(a, b Result) int {
		return cmp.Compare(a.School.Name, b.School.Name)
	})
}
