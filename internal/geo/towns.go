package geo

import (
	_ "embed"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"gopkg.in/yaml.v3"
)

//go:embed towns.yaml
var defaultTownsYAML []byte

// Town is a named centroid.
type Town struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// Towns is an immutable lookup table of town centroids.
type Towns struct {
	names  []string
	points map[string]*geom.Point
}

// NewTowns builds a table from a list of towns. Duplicate names are rejected.
func NewTowns(list []Town) (Towns, error) {
	t := Towns{points: make(map[string]*geom.Point, len(list))}
	for _, town := range list {
		if town.Name == "" {
			return Towns{}, eris.New("geo: town with empty name")
		}
		if _, dup := t.points[town.Name]; dup {
			return Towns{}, eris.Errorf("geo: duplicate town %q", town.Name)
		}
		t.points[town.Name] = NewPoint(town.Lat, town.Lng)
		t.names = append(t.names, town.Name)
	}
	sort.Strings(t.names)
	return t, nil
}

// DefaultTowns returns the embedded centroid table.
func DefaultTowns() Towns {
	t, err := parseTowns(defaultTownsYAML)
	if err != nil {
		panic(eris.ToString(err, false))
	}
	return t
}

// LoadTowns reads a centroid table from a YAML file. An empty path returns
// the embedded table.
func LoadTowns(path string) (Towns, error) {
	if path == "" {
		return DefaultTowns(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Towns{}, eris.Wrapf(err, "geo: read towns %s", path)
	}
	return parseTowns(data)
}

func parseTowns(data []byte) (Towns, error) {
	var doc struct {
		Towns []Town `yaml:"towns"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Towns{}, eris.Wrap(err, "geo: parse towns")
	}
	return NewTowns(doc.Towns)
}

// Lookup returns the centroid for a town name (exact match).
func (t Towns) Lookup(name string) (*geom.Point, bool) {
	p, ok := t.points[name]
	return p, ok
}

// Names returns the town names in alphabetical order.
func (t Towns) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of towns.
func (t Towns) Len() int { return len(t.names) }
