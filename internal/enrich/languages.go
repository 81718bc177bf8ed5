package enrich

import (
	"encoding/json"
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/school-finder/internal/dataset"
	"github.com/sells-group/school-finder/internal/model"
)

// Cell values written to the language columns.
const (
	Offered    = "Y"
	NotOffered = "-"
)

// LanguageLists is the published list of schools offering each higher
// mother tongue.
type LanguageLists struct {
	Chinese []string `json:"higher_chinese_language"`
	Tamil   []string `json:"higher_tamil_language"`
	Malay   []string `json:"higher_malay_language"`
}

// ByLanguage keys the lists by dataset column.
func (l LanguageLists) ByLanguage() map[model.Language][]string {
	return map[model.Language][]string{
		model.LanguageHCL: l.Chinese,
		model.LanguageHTL: l.Tamil,
		model.LanguageHML: l.Malay,
	}
}

// LoadLanguageLists reads the higher mother tongue JSON file.
func LoadLanguageLists(path string) (LanguageLists, error) {
	var l LanguageLists
	data, err := os.ReadFile(path)
	if err != nil {
		return l, eris.Wrapf(err, "enrich: read language lists %s", path)
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return l, eris.Wrapf(err, "enrich: parse language lists %s", path)
	}
	return l, nil
}

// LanguageReport summarizes a language merge.
type LanguageReport struct {
	// Listed and Marked count names in each list and rows flagged.
	Listed map[model.Language]int
	Marked map[model.Language]int

	// Renamed maps published names to the dataset name they were matched to,
	// for names that differ.
	Renamed map[string]string

	// Unmatched lists published names with no dataset counterpart.
	Unmatched []string
}

// MergeLanguages maps each published name onto a dataset name and writes
// the HCL, HTL and HML columns.
func MergeLanguages(t *dataset.Table, lists LanguageLists) LanguageReport {
	names := make([]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		names = append(names, t.Get(i, dataset.ColName))
	}

	rep := LanguageReport{
		Listed:  make(map[model.Language]int),
		Marked:  make(map[model.Language]int),
		Renamed: make(map[string]string),
	}

	offered := make(map[model.Language]map[string]bool)
	for lang, published := range lists.ByLanguage() {
		rep.Listed[lang] = len(published)
		set := make(map[string]bool, len(published))
		for _, p := range published {
			match, ok := matchName(p, names)
			if !ok {
				if !slices.Contains(rep.Unmatched, p) {
					rep.Unmatched = append(rep.Unmatched, p)
				}
				continue
			}
			if match != p {
				rep.Renamed[p] = match
			}
			set[match] = true
		}
		offered[lang] = set
	}
	slices.Sort(rep.Unmatched)

	for _, lang := range model.AllLanguages {
		col := string(lang)
		t.EnsureColumn(col)
		for i, name := range names {
			v := NotOffered
			if offered[lang][name] {
				v = Offered
				rep.Marked[lang]++
			}
			t.Set(i, col, v)
		}
	}

	zap.L().Debug("merged language lists",
		zap.Int("renamed", len(rep.Renamed)),
		zap.Int("unmatched", len(rep.Unmatched)),
	)
	return rep
}

// matchName prefers an exact dataset name before falling back to fuzzy
// matching.
func matchName(published string, names []string) (string, bool) {
	if slices.Contains(names, published) {
		return published, true
	}
	return BestMatch(published, names)
}
