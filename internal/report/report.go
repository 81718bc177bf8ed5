// Package report renders a finder result set as a text table, JSON,
// GeoJSON or an Excel workbook.
package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/school-finder/internal/finder"
)

// Format selects a renderer.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
	FormatXLSX    Format = "xlsx"
)

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool { return f == FormatXLSX }

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatGeoJSON:
		return FormatGeoJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("unknown format: %q (valid: table, json, geojson, xlsx)", s)
	}
}

// Render writes res to w in the given format.
func Render(w io.Writer, f Format, res finder.Results) error {
	switch f {
	case FormatTable, "":
		return Table(w, res)
	case FormatJSON:
		return JSON(w, res)
	case FormatGeoJSON:
		return GeoJSON(w, res)
	case FormatXLSX:
		return XLSX(w, res)
	default:
		return eris.Errorf("report: unsupported format %q", f)
	}
}

// FormatDistance renders a distance with one decimal, or "-" when the
// result has none.
func FormatDistance(r finder.Result) string {
	if !r.HasDistance {
		return "-"
	}
	return strconv.FormatFloat(r.DistanceKM, 'f', 1, 64) + " km"
}

func groupNames(res finder.Results) string {
	names := make([]string, len(res.Groups))
	for i, g := range res.Groups {
		names[i] = g.String()
	}
	return strings.Join(names, ", ")
}
