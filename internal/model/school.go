// Package model defines the school record and the small enums shared across
// the finder, the dataset loader and the enrichment tools.
package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Gender is the gender composition of a school.
type Gender string

const (
	GenderMixed Gender = "mixed"
	GenderBoys  Gender = "boys"
	GenderGirls Gender = "girls"
)

// ParseGender maps a dataset cell to a Gender. Empty cells default to mixed.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mixed", "co-ed", "coed":
		return GenderMixed, nil
	case "boys", "boy":
		return GenderBoys, nil
	case "girls", "girl":
		return GenderGirls, nil
	default:
		return "", eris.Errorf("unknown gender: %q (valid: mixed, boys, girls)", s)
	}
}

// Language is a higher mother tongue language code.
type Language string

const (
	LanguageHCL Language = "HCL" // Higher Chinese Language
	LanguageHTL Language = "HTL" // Higher Tamil Language
	LanguageHML Language = "HML" // Higher Malay Language
)

// AllLanguages lists the language codes carried by the dataset.
var AllLanguages = []Language{LanguageHCL, LanguageHTL, LanguageHML}

// ParseLanguage converts a code such as "hcl" into a Language.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToUpper(strings.TrimSpace(s))) {
	case LanguageHCL:
		return LanguageHCL, nil
	case LanguageHTL:
		return LanguageHTL, nil
	case LanguageHML:
		return LanguageHML, nil
	default:
		return "", eris.Errorf("unknown language: %q (valid: HCL, HTL, HML)", s)
	}
}

// ColumnKey identifies one cut-off column of the dataset.
type ColumnKey struct {
	Year       int
	Group      Group
	Affiliated bool
}

// String returns the dataset header for the key, e.g. "2025_PG2_Aff".
func (k ColumnKey) String() string {
	if k.Affiliated {
		return fmt.Sprintf("%d_%s_Aff", k.Year, k.Group)
	}
	return fmt.Sprintf("%d_%s", k.Year, k.Group)
}

var columnKeyRe = regexp.MustCompile(`^(\d{4})_(IP|PG1|PG2|PG3)(_Aff)?$`)

// ParseColumnKey parses a cut-off header. Affiliated integrated-programme
// columns are rejected.
func ParseColumnKey(header string) (ColumnKey, error) {
	m := columnKeyRe.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return ColumnKey{}, eris.Errorf("not a cut-off column: %q", header)
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return ColumnKey{}, eris.Wrapf(err, "cut-off column %q: year", header)
	}
	key := ColumnKey{Year: year, Group: Group(m[2]), Affiliated: m[3] != ""}
	if key.Affiliated && key.Group.Integrated() {
		return ColumnKey{}, eris.Errorf("integrated programme has no affiliated column: %q", header)
	}
	return key, nil
}

// School is one institution in the dataset. Records are immutable once loaded.
type School struct {
	Name      string
	Address   string
	Town      string
	DetailURL string

	// Latitude and Longitude hold the raw dataset cells; Location is nil when
	// they are absent or do not parse to a usable coordinate.
	Latitude  string
	Longitude string
	Location  *geom.Point

	Gender    Gender
	Languages map[Language]bool

	// Cutoffs maps a column to its raw cell. Missing keys and empty cells
	// both mean no cut-off data.
	Cutoffs map[ColumnKey]string
}

// Cutoff returns the raw cell for key, or "" when the school has none.
func (s *School) Cutoff(key ColumnKey) string {
	if s.Cutoffs == nil {
		return ""
	}
	return s.Cutoffs[key]
}

// Offers reports whether the school offers the given language.
func (s *School) Offers(lang Language) bool {
	return s.Languages[lang]
}
