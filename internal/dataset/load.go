// Package dataset reads and writes the schools CSV.
//
// Load decodes the file into validated model.School records for the finder.
// Table keeps the file as raw rows so the enrichment tools can rewrite it
// without losing columns they do not understand.
package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/school-finder/internal/geo"
	"github.com/sells-group/school-finder/internal/model"
)

// Dataset header names.
const (
	ColName      = "School Name"
	ColAddress   = "Address"
	ColTown      = "Town"
	ColLatitude  = "Latitude"
	ColLongitude = "Longitude"
	ColGender    = "Gender"
	ColDetailURL = "Detail URL"
	ColScrapedAt = "Scrape Timestamp"
)

// row is the fixed part of a dataset record. Cut-off columns are resolved
// separately because their names depend on the years present.
type row struct {
	Name      string `csv:"School Name"`
	Address   string `csv:"Address"`
	Town      string `csv:"Town"`
	Latitude  string `csv:"Latitude"`
	Longitude string `csv:"Longitude"`
	Gender    string `csv:"Gender"`
	HCL       string `csv:"HCL"`
	HTL       string `csv:"HTL"`
	HML       string `csv:"HML"`
	DetailURL string `csv:"Detail URL"`
	ScrapedAt string `csv:"Scrape Timestamp"`
}

// LoadFile reads the dataset at path.
func LoadFile(path string) ([]model.School, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	schools, err := Load(f)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: load %s", path)
	}
	return schools, nil
}

// attributeColumns are the headers bound to row.
var attributeColumns = []string{
	ColName, ColAddress, ColTown, ColLatitude, ColLongitude, ColGender,
	string(model.LanguageHCL), string(model.LanguageHTL), string(model.LanguageHML),
	ColDetailURL, ColScrapedAt,
}

// Load decodes schools from r. Any header that is neither a known attribute
// column nor a well-formed cut-off column is rejected, as are duplicate
// school names. Short rows are padded with empty cells.
func Load(r io.Reader) ([]model.School, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.New("dataset: empty file")
		}
		return nil, eris.Wrap(err, "dataset: read header")
	}
	if !contains(header, ColName) {
		return nil, eris.Errorf("dataset: missing required column %q", ColName)
	}
	cutoffs, err := cutoffColumns(header)
	if err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(&padReader{r: reader, width: len(header)}, header...)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read header")
	}

	var (
		schools []model.School
		seen    = make(map[string]bool)
	)
	for line := 2; ; line++ {
		var rec row
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "dataset: decode line %d", line)
		}

		s := toSchool(rec, dec.Record(), cutoffs, line)
		if s.Name == "" {
			zap.L().Debug("dataset: skipping row without school name", zap.Int("line", line))
			continue
		}
		if seen[s.Name] {
			return nil, eris.Errorf("dataset: duplicate school %q on line %d", s.Name, line)
		}
		seen[s.Name] = true
		schools = append(schools, s)
	}

	return schools, nil
}

// padReader extends records shorter than the header with empty cells.
type padReader struct {
	r     *csv.Reader
	width int
}

func (p *padReader) Read() ([]string, error) {
	rec, err := p.r.Read()
	if err != nil || len(rec) >= p.width {
		return rec, err
	}
	padded := make([]string, p.width)
	copy(padded, rec)
	return padded, nil
}

// cutoffColumns maps the indexes of non-attribute columns onto cut-off keys.
func cutoffColumns(header []string) (map[int]model.ColumnKey, error) {
	out := make(map[int]model.ColumnKey)
	for idx, col := range header {
		if contains(attributeColumns, col) {
			continue
		}
		key, err := model.ParseColumnKey(col)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: unknown column %q", col)
		}
		out[idx] = key
	}
	return out, nil
}

// toSchool converts a decoded row. An unrecognised gender is logged and
// treated as mixed.
func toSchool(rec row, record []string, cutoffs map[int]model.ColumnKey, line int) model.School {
	gender, err := model.ParseGender(rec.Gender)
	if err != nil {
		zap.L().Warn("dataset: unrecognised gender, assuming mixed",
			zap.Int("line", line),
			zap.String("school", rec.Name),
			zap.String("gender", rec.Gender),
		)
		gender = model.GenderMixed
	}

	s := model.School{
		Name:      strings.TrimSpace(rec.Name),
		Address:   strings.TrimSpace(rec.Address),
		Town:      strings.TrimSpace(rec.Town),
		DetailURL: strings.TrimSpace(rec.DetailURL),
		Latitude:  strings.TrimSpace(rec.Latitude),
		Longitude: strings.TrimSpace(rec.Longitude),
		Gender:    gender,
		Languages: map[model.Language]bool{
			model.LanguageHCL: isFlagSet(rec.HCL),
			model.LanguageHTL: isFlagSet(rec.HTL),
			model.LanguageHML: isFlagSet(rec.HML),
		},
		Cutoffs: make(map[model.ColumnKey]string, len(cutoffs)),
	}
	if p, ok := geo.ParsePoint(s.Latitude, s.Longitude); ok {
		s.Location = p
	}

	for idx, key := range cutoffs {
		if idx >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[idx]); v != "" {
			s.Cutoffs[key] = v
		}
	}
	return s
}

// isFlagSet interprets a language cell. The dataset marks offerings with "Y"
// and absence with "-".
func isFlagSet(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
