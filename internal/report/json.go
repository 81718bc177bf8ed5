package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/school-finder/internal/finder"
)

// Entry is the serialized form of one result.
type Entry struct {
	Name       string   `json:"name"`
	Town       string   `json:"town,omitempty"`
	Address    string   `json:"address,omitempty"`
	Gender     string   `json:"gender"`
	Scores     string   `json:"scores"`
	DistanceKM *float64 `json:"distance_km,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	DetailURL  string   `json:"detail_url,omitempty"`
}

// NewEntry flattens a result.
func NewEntry(r finder.Result) Entry {
	e := Entry{
		Name:      r.School.Name,
		Town:      r.School.Town,
		Address:   r.School.Address,
		Gender:    string(r.School.Gender),
		Scores:    r.Scores,
		DetailURL: r.School.DetailURL,
	}
	if r.HasDistance {
		d := r.DistanceKM
		e.DistanceKM = &d
	}
	if p := r.School.Location; p != nil {
		lat, lng := p.Y(), p.X()
		e.Latitude, e.Longitude = &lat, &lng
	}
	return e
}

// JSON writes the results as an indented array.
func JSON(w io.Writer, res finder.Results) error {
	entries := make([]Entry, 0, len(res.Items))
	for _, r := range res.Items {
		entries = append(entries, NewEntry(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(entries), "report: encode json")
}
