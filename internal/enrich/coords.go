package enrich

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/school-finder/internal/dataset"
)

// Coordinate is one entry of a cached coordinates file.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LoadCoordinates reads a JSON object mapping school names to coordinates.
func LoadCoordinates(path string) (map[string]Coordinate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: read coordinates %s", path)
	}
	var coords map[string]Coordinate
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, eris.Wrapf(err, "enrich: parse coordinates %s", path)
	}
	return coords, nil
}

// InjectReport summarizes a coordinate injection.
type InjectReport struct {
	Total     int
	Matched   int
	Unmatched []string
}

// InjectCoordinates writes Latitude and Longitude for every row whose name
// has an exact entry in coords. Other rows get empty coordinates.
func InjectCoordinates(t *dataset.Table, coords map[string]Coordinate) InjectReport {
	t.EnsureColumn(dataset.ColLatitude)
	t.EnsureColumn(dataset.ColLongitude)

	rep := InjectReport{Total: t.Len()}
	for i := 0; i < t.Len(); i++ {
		name := t.Get(i, dataset.ColName)
		c, ok := coords[name]
		if !ok {
			t.Set(i, dataset.ColLatitude, "")
			t.Set(i, dataset.ColLongitude, "")
			rep.Unmatched = append(rep.Unmatched, name)
			continue
		}
		t.Set(i, dataset.ColLatitude, formatCoord(c.Latitude))
		t.Set(i, dataset.ColLongitude, formatCoord(c.Longitude))
		rep.Matched++
	}
	return rep
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
