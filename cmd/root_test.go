package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/school-finder/internal/config"
	"github.com/sells-group/school-finder/internal/dataset"
	"github.com/sells-group/school-finder/internal/finder"
	"github.com/sells-group/school-finder/internal/geo"
	"github.com/sells-group/school-finder/internal/model"
	"github.com/sells-group/school-finder/pkg/geocode"
)

const testDatasetCSV = `School Name,Town,Address,2025_IP,2025_PG3,2025_PG2,2025_PG1,2025_PG2_Aff,2024_PG3,Detail URL,Scrape Timestamp,Latitude,Longitude,Gender,HCL,HTL,HML
Raffles Institution,Bishan,1 Raffles Institution Lane,6,-,-,-,-,-,https://example.com/ri,2025-01-01T00:00:00,1.3466,103.8436,Boys,Y,-,-
Bedok View Secondary,Bedok,11 Bedok North St 3,-,2125,922,-,1920,2024,https://example.com/bv,2025-01-01T00:00:00,1.3332,103.9330,Mixed,-,Y,Y
`

type fakeGeocoder struct {
	results map[string]*geocode.Result
	err     error
	calls   int
}

func (f *fakeGeocoder) Search(_ context.Context, q string) (*geocode.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[q]; ok {
		return r, nil
	}
	return &geocode.Result{}, nil
}

func (f *fakeGeocoder) LocatePostalCode(ctx context.Context, postal string) (*geocode.Result, error) {
	if err := geocode.ValidatePostalCode(postal); err != nil {
		return nil, err
	}
	return f.Search(ctx, postal)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(datasetPath string) *config.Config {
	return &config.Config{
		Data: config.DataConfig{
			Dataset:     datasetPath,
			CurrentYear: 2025,
			Years:       []int{2025, 2024, 2023},
		},
		Filter: config.FilterConfig{
			Score:         finder.MinScore,
			MaxCutoff:     finder.MaxScore,
			MaxDistanceKM: finder.MaxDistanceKM,
		},
	}
}

func defaultFindOptions() findOptions {
	return findOptions{
		Score:       finder.MinScore,
		MaxCutoff:   finder.MaxScore,
		Gender:      string(finder.GenderAll),
		MaxDistance: finder.MaxDistanceKM,
		Sort:        string(finder.SortByName),
		Format:      "table",
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"find", "locate", "towns", "enrich", "inject-coords", "languages", "scrape"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "school-finder", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestFindCommand_Flags(t *testing.T) {
	for _, name := range []string{
		"dataset", "score", "max-cutoff", "historical", "affiliated", "gender", "lang",
		"max-distance", "sort", "town", "postal", "lat", "lng", "format", "output",
	} {
		assert.NotNil(t, findCmd.Flags().Lookup(name), "find should have --%s flag", name)
	}

	assert.Equal(t, "4", findCmd.Flags().Lookup("score").DefValue)
	assert.Equal(t, "table", findCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "o", findCmd.Flags().Lookup("output").Shorthand)
}

func TestMaintenanceCommand_Flags(t *testing.T) {
	assert.NotNil(t, enrichCmd.Flags().Lookup("dataset"))
	assert.NotNil(t, injectCmd.Flags().Lookup("coords"))
	assert.NotNil(t, injectCmd.Flags().Lookup("output"))
	assert.NotNil(t, languagesCmd.Flags().Lookup("file"))
	assert.NotNil(t, scrapeCmd.Flags().Lookup("output"))
}

func TestParseFindOptions_ConfigDefaults(t *testing.T) {
	c := testConfig("schools.csv")
	c.Filter.Score = 21
	c.Filter.Sort = "distance"

	o := parseFindOptions(findCmd, c)
	assert.Equal(t, 21, o.Score)
	assert.Equal(t, "distance", o.Sort)
	assert.False(t, o.HasPoint)
}

func TestBuildFilterState(t *testing.T) {
	towns := geo.DefaultTowns()

	o := defaultFindOptions()
	o.Score = 22
	o.Gender = "girls"
	o.Languages = []string{"hcl", "HTL"}
	o.Town = "Bedok"
	o.Sort = "distance"

	st, err := buildFilterState(o, towns)
	require.NoError(t, err)
	assert.Equal(t, 22, st.Score)
	assert.Equal(t, finder.GenderFilter("girls"), st.Gender)
	assert.Equal(t, []model.Language{model.LanguageHCL, model.LanguageHTL}, st.Languages)
	assert.Equal(t, "Bedok", st.Town)
}

func TestBuildFilterState_Errors(t *testing.T) {
	towns := geo.DefaultTowns()

	tests := []struct {
		name string
		edit func(*findOptions)
	}{
		{"unknown town", func(o *findOptions) { o.Town = "Atlantis" }},
		{"bad gender", func(o *findOptions) { o.Gender = "other" }},
		{"bad sort", func(o *findOptions) { o.Sort = "rank" }},
		{"bad language", func(o *findOptions) { o.Languages = []string{"HXL"} }},
		{"bad point", func(o *findOptions) { o.Lat, o.Lng, o.HasPoint = 0, 0, true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultFindOptions()
			tt.edit(&o)
			_, err := buildFilterState(o, towns)
			assert.Error(t, err)
		})
	}
}

func TestFormatTowns(t *testing.T) {
	towns, err := geo.NewTowns([]geo.Town{
		{Name: "Tampines", Lat: 1.3496, Lng: 103.9568},
		{Name: "Bedok", Lat: 1.3236, Lng: 103.9273},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, formatTowns(&buf, towns))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "TOWN"))
	assert.True(t, strings.HasPrefix(lines[1], "Bedok"))
	assert.Contains(t, lines[1], "1.3236")
	assert.True(t, strings.HasPrefix(lines[2], "Tampines"))
}

func TestRunFind_Table(t *testing.T) {
	path := writeFile(t, "schools.csv", testDatasetCSV)

	var stdout, stderr bytes.Buffer
	err := runFind(context.Background(), testConfig(path), &fakeGeocoder{}, defaultFindOptions(), &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Found 2 schools")
	assert.Contains(t, out, "Raffles Institution")
	assert.Contains(t, out, "Bedok View Secondary")
	assert.NotContains(t, out, "Reference:")
	assert.Empty(t, stderr.String())
}

func TestRunFind_Postal(t *testing.T) {
	path := writeFile(t, "schools.csv", testDatasetCSV)
	gc := &fakeGeocoder{results: map[string]*geocode.Result{
		"469662": {Latitude: 1.3330, Longitude: 103.9320, Matched: true},
	}}

	tests := []struct {
		name       string
		postal     string
		gc         *fakeGeocoder
		wantErrOut string
		wantRef    bool
	}{
		{"found", "469662", gc, "", true},
		{"invalid", "12345", gc, "Please enter a valid 6-digit postal code", false},
		{"not found", "000000", gc, "Postal code not found", false},
		{"service error", "469662", &fakeGeocoder{err: errors.New("boom")}, "Error geocoding postal code", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultFindOptions()
			o.Postal = tt.postal

			var stdout, stderr bytes.Buffer
			require.NoError(t, runFind(context.Background(), testConfig(path), tt.gc, o, &stdout, &stderr))

			if tt.wantErrOut == "" {
				assert.Empty(t, stderr.String())
			} else {
				assert.Contains(t, stderr.String(), tt.wantErrOut)
			}
			assert.Equal(t, tt.wantRef, strings.Contains(stdout.String(), "Reference:"))
		})
	}
}

func TestRunFind_BinaryFormatNeedsOutput(t *testing.T) {
	path := writeFile(t, "schools.csv", testDatasetCSV)
	o := defaultFindOptions()
	o.Format = "xlsx"

	var stdout, stderr bytes.Buffer
	err := runFind(context.Background(), testConfig(path), &fakeGeocoder{}, o, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}

func TestRunFind_GeoJSONToFile(t *testing.T) {
	path := writeFile(t, "schools.csv", testDatasetCSV)
	out := filepath.Join(t.TempDir(), "schools.geojson")
	o := defaultFindOptions()
	o.Format = "geojson"
	o.Output = out

	var stdout, stderr bytes.Buffer
	require.NoError(t, runFind(context.Background(), testConfig(path), &fakeGeocoder{}, o, &stdout, &stderr))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
	assert.Contains(t, string(data), "Raffles Institution")
}

func TestRunLocate(t *testing.T) {
	gc := &fakeGeocoder{results: map[string]*geocode.Result{
		"469662": {Latitude: 1.333, Longitude: 103.932, Address: "1 BEDOK NORTH AVENUE 4", Matched: true},
	}}

	var stdout, stderr bytes.Buffer
	runLocate(context.Background(), gc, "469662", &stdout, &stderr)
	assert.Equal(t, "1.333000, 103.932000\n1 BEDOK NORTH AVENUE 4\n", stdout.String())
	assert.Empty(t, stderr.String())

	stdout.Reset()
	runLocate(context.Background(), gc, "46966", &stdout, &stderr)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "valid 6-digit")
	assert.Equal(t, 1, gc.calls)
}

func TestRunEnrich(t *testing.T) {
	path := writeFile(t, "schools.csv", "School Name,Address\nAlpha Secondary,1 Alpha Road\nBravo Secondary,2 Bravo Road\n")
	gc := &fakeGeocoder{results: map[string]*geocode.Result{
		"1 Alpha Road": {Latitude: 1.35, Longitude: 103.82, Matched: true},
	}}

	var out bytes.Buffer
	require.NoError(t, runEnrich(context.Background(), gc, path, &out))
	assert.Contains(t, out.String(), "Found 2 schools to geocode")
	assert.Contains(t, out.String(), "1/2 schools successfully geocoded")

	tbl, err := dataset.ReadTableFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1.35", tbl.Get(0, dataset.ColLatitude))
	assert.Equal(t, "103.82", tbl.Get(0, dataset.ColLongitude))
	assert.Equal(t, "", tbl.Get(1, dataset.ColLatitude))
}

func TestRunInject(t *testing.T) {
	input := writeFile(t, "schools.csv", "School Name,Town\nAlpha Secondary,Bedok\nBravo Secondary,Tampines\n")
	coords := writeFile(t, "coords.json", `{"Alpha Secondary": {"latitude": 1.35, "longitude": 103.82}}`)
	output := filepath.Join(t.TempDir(), "out.csv")

	var out bytes.Buffer
	require.NoError(t, runInject(input, output, coords, &out))
	assert.Contains(t, out.String(), "Processed 2 schools")
	assert.Contains(t, out.String(), "Matched: 1")
	assert.Contains(t, out.String(), "  - Bravo Secondary")

	tbl, err := dataset.ReadTableFile(output)
	require.NoError(t, err)
	assert.Equal(t, "1.35", tbl.Get(0, dataset.ColLatitude))
	assert.Equal(t, "", tbl.Get(1, dataset.ColLongitude))
}

func TestRunInject_MissingCoords(t *testing.T) {
	input := writeFile(t, "schools.csv", "School Name\nAlpha Secondary\n")
	var out bytes.Buffer
	assert.Error(t, runInject(input, input, filepath.Join(t.TempDir(), "missing.json"), &out))
}

func TestRunLanguages(t *testing.T) {
	input := writeFile(t, "schools.csv", "School Name,Town\nAnglican High School,Tampines\nBedok View Secondary School,Bedok\n")
	lists := writeFile(t, "hmt.json", `{
  "higher_chinese_language": ["Anglican High School"],
  "higher_tamil_language": ["Bedok View Secondary"],
  "higher_malay_language": ["Nowhere Secondary School"]
}`)

	var out bytes.Buffer
	require.NoError(t, runLanguages(input, input, lists, &out))
	assert.Contains(t, out.String(), "No match for 'Nowhere Secondary School'")

	tbl, err := dataset.ReadTableFile(input)
	require.NoError(t, err)
	assert.Equal(t, "Y", tbl.Get(0, string(model.LanguageHCL)))
	assert.Equal(t, "-", tbl.Get(0, string(model.LanguageHTL)))
	assert.Equal(t, "Y", tbl.Get(1, string(model.LanguageHTL)))
	assert.Equal(t, "-", tbl.Get(1, string(model.LanguageHML)))
}

type pageMap map[string]string

func (p pageMap) Get(_ context.Context, u string) ([]byte, error) {
	body, ok := p[u]
	if !ok {
		return nil, errors.New("not found: " + u)
	}
	return []byte(body), nil
}

func TestRunScrape(t *testing.T) {
	c := testConfig("")
	c.Scrape = config.ScrapeConfig{BaseURL: "https://sgschooling.com", MainPath: "/secondary/cop/all"}

	pages := pageMap{
		"https://sgschooling.com/secondary/cop/all": `<table>
<tr><th>#</th><th>School</th><th>IP</th><th>PG3</th><th>PG2</th><th>PG1</th></tr>
<tr><td>1</td><td><a href="/school/alpha">Alpha Secondary</a></td><td>-</td><td>2125</td><td>922</td><td>-</td></tr>
</table>`,
	}
	output := filepath.Join(t.TempDir(), "nested", "schools.csv")

	var out bytes.Buffer
	require.NoError(t, runScrape(context.Background(), c, pages, output, &out))
	assert.Contains(t, out.String(), "Exported 1 schools")

	tbl, err := dataset.ReadTableFile(output)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Alpha Secondary", tbl.Get(0, dataset.ColName))
	assert.Equal(t, "2125", tbl.Get(0, "2025_PG3"))
	assert.Equal(t, "N/A", tbl.Get(0, dataset.ColTown))
}
