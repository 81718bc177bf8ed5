package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/school-finder/internal/finder"
	"github.com/sells-group/school-finder/internal/geo"
	"github.com/sells-group/school-finder/internal/model"
)

func sampleResults() finder.Results {
	alpha := &model.School{
		Name:      "Alpha Secondary",
		Town:      "Bedok",
		Address:   "1 Alpha Road",
		Gender:    model.GenderMixed,
		DetailURL: "https://sgschooling.com/school/alpha",
		Location:  geo.NewPoint(1.3240, 103.9300),
	}
	bravo := &model.School{
		Name:   "Bravo Girls",
		Gender: model.GenderGirls,
	}
	return finder.Results{
		Groups:    []model.Group{model.GroupPG3, model.GroupIP},
		Reference: geo.NewPoint(1.3236, 103.9273),
		Items: []finder.Result{
			{School: alpha, Scores: "PG3: 2125", DistanceKM: 0.34, HasDistance: true},
			{School: bravo, Scores: finder.NotAvailable},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"": FormatTable, "table": FormatTable, "JSON": FormatJSON,
		" geojson ": FormatGeoJSON, "xlsx": FormatXLSX,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)

	assert.True(t, FormatXLSX.Binary())
	assert.False(t, FormatJSON.Binary())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, sampleResults()))

	want := "Found 2 schools (groups: PG3, IP)\n" +
		"Reference: 1.3236, 103.9273\n" +
		"\n" +
		"SCHOOL           TOWN   SCORES     DISTANCE  URL\n" +
		"------           ----   ------     --------  ---\n" +
		"Alpha Secondary  Bedok  PG3: 2125  0.3 km    https://sgschooling.com/school/alpha\n" +
		"Bravo Girls      -      N/A        -         -\n"
	assert.Equal(t, want, buf.String())
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, finder.Results{Groups: []model.Group{model.GroupPG1}}))
	assert.Equal(t, "Found 0 schools (groups: PG1)\n", buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sampleResults()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "Alpha Secondary", got[0]["name"])
	assert.Equal(t, "mixed", got[0]["gender"])
	assert.InDelta(t, 0.34, got[0]["distance_km"], 1e-9)
	assert.InDelta(t, 1.3240, got[0]["latitude"], 1e-9)
	assert.InDelta(t, 103.9300, got[0]["longitude"], 1e-9)

	assert.Equal(t, "N/A", got[1]["scores"])
	assert.NotContains(t, got[1], "distance_km")
	assert.NotContains(t, got[1], "latitude")
	assert.NotContains(t, got[1], "town")
}

func TestJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, finder.Results{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatGeoJSON, sampleResults()))

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2, "school without coordinates is omitted")

	school := doc.Features[0]
	assert.Equal(t, "Alpha Secondary", school.ID)
	assert.Equal(t, "Point", school.Geometry.Type)
	assert.InDeltaSlice(t, []float64{103.9300, 1.3240}, school.Geometry.Coordinates, 1e-9)
	assert.Equal(t, "PG3: 2125", school.Properties["scores"])
	assert.InDelta(t, 0.34, school.Properties["distance_km"], 1e-9)

	ref := doc.Features[1]
	assert.Equal(t, "reference", ref.ID)
	assert.Equal(t, true, ref.Properties["reference"])
}

func TestGeoJSON_NoReference(t *testing.T) {
	res := sampleResults()
	res.Reference = nil
	fc, err := FeatureCollection(res)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatXLSX, sampleResults()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	var header []string
	for _, c := range sheet.Rows[0].Cells {
		header = append(header, c.String())
	}
	assert.Equal(t, xlsxHeader, header)

	first := sheet.Rows[1].Cells
	assert.Equal(t, "Alpha Secondary", first[0].String())
	assert.Equal(t, "PG3: 2125", first[4].String())
	d, err := first[5].Float()
	require.NoError(t, err)
	assert.InDelta(t, 0.34, d, 1e-9)

	second := sheet.Rows[2].Cells
	assert.Equal(t, "girls", second[3].String())
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "-", FormatDistance(finder.Result{}))
	assert.Equal(t, "12.3 km", FormatDistance(finder.Result{DistanceKM: 12.345, HasDistance: true}))
	assert.Equal(t, "50.0 km", FormatDistance(finder.Result{DistanceKM: 50, HasDistance: true}))
}
