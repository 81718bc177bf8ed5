package finder

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/school-finder/internal/model"
)

// Valid AL score range.
const (
	MinScore = 4
	MaxScore = 30
)

// Radius bounds in kilometres.
const (
	MinDistanceKM = 1
	MaxDistanceKM = 50
)

// SortMode orders the result set.
type SortMode string

const (
	SortByName     SortMode = "name"
	SortByDistance SortMode = "distance"
)

// ParseSortMode converts a flag value into a SortMode.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return SortByName, nil
	case "distance":
		return SortByDistance, nil
	default:
		return "", eris.Errorf("unknown sort mode: %q (valid: name, distance)", s)
	}
}

// GenderFilter restricts results to one gender composition. GenderAll
// disables the filter.
type GenderFilter string

// GenderAll matches every school.
const GenderAll GenderFilter = "all"

// ParseGenderFilter converts a flag value into a GenderFilter.
func ParseGenderFilter(s string) (GenderFilter, error) {
	if v := strings.ToLower(strings.TrimSpace(s)); v == "" || v == string(GenderAll) {
		return GenderAll, nil
	}
	g, err := model.ParseGender(s)
	if err != nil {
		return "", err
	}
	return GenderFilter(g), nil
}

// FilterState is the user's query. The pipeline only reads it.
type FilterState struct {
	Score         int
	MaxCutoff     int
	HistoricalMax bool
	Affiliated    string
	Gender        GenderFilter
	Languages     []model.Language
	MaxDistanceKM float64
	Sort          SortMode

	// At most one of Town and Point is set; use UseTown / UsePoint.
	Town  string
	Point *geom.Point
}

// DefaultFilterState returns the initial query.
func DefaultFilterState() FilterState {
	return FilterState{
		Score:         MinScore,
		MaxCutoff:     MaxScore,
		Gender:        GenderAll,
		MaxDistanceKM: MaxDistanceKM,
		Sort:          SortByName,
	}
}

// UseTown selects a town centroid as the reference point and clears any
// located point.
func (s *FilterState) UseTown(name string) {
	s.Town = name
	s.Point = nil
}

// UsePoint selects explicit coordinates as the reference point and clears
// any town selection.
func (s *FilterState) UsePoint(p *geom.Point) {
	s.Point = p
	s.Town = ""
}

// Normalize clamps the score and radius into their valid ranges and fills
// empty enum fields.
func (s *FilterState) Normalize() {
	s.Score = clamp(s.Score, MinScore, MaxScore)
	if s.MaxDistanceKM < MinDistanceKM {
		s.MaxDistanceKM = MinDistanceKM
	}
	if s.MaxDistanceKM > MaxDistanceKM {
		s.MaxDistanceKM = MaxDistanceKM
	}
	if s.Gender == "" {
		s.Gender = GenderAll
	}
	if s.Sort == "" {
		s.Sort = SortByName
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
