package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/school-finder/internal/finder"
)

// FeatureCollection builds a collection of school points. Schools without
// coordinates are left out. The reference point, when active, is the last
// feature and carries "reference": true.
func FeatureCollection(res finder.Results) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(res.Items)+1)}
	for _, r := range res.Items {
		if r.School.Location == nil {
			continue
		}
		props := map[string]any{
			"name":   r.School.Name,
			"town":   r.School.Town,
			"scores": r.Scores,
		}
		if r.HasDistance {
			props["distance_km"] = r.DistanceKM
		}
		if r.School.DetailURL != "" {
			props["detail_url"] = r.School.DetailURL
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         r.School.Name,
			Geometry:   r.School.Location,
			Properties: props,
		})
	}
	if res.Reference != nil {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         "reference",
			Geometry:   res.Reference,
			Properties: map[string]any{"reference": true},
		})
	}
	return fc, nil
}

// GeoJSON writes the results as a FeatureCollection.
func GeoJSON(w io.Writer, res finder.Results) error {
	fc, err := FeatureCollection(res)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "report: encode geojson")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return eris.Wrap(err, "report: write geojson")
	}
	return nil
}
