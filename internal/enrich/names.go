package enrich

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinSimilarity is the lowest similarity accepted for names that do not
// contain one another.
const MinSimilarity = 0.6

// nameReplacements are applied in order to a folded name.
var nameReplacements = []struct{ old, new string }{
	{"secondary school", ""},
	{"(secondary)", ""},
	{" secondary", ""},
	{"school", ""},
	{"'s", "s"},
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// NormalizeName reduces a school name to a comparison key: case folded,
// accents stripped, curly apostrophes straightened, "secondary"/"school"
// suffixes removed and whitespace collapsed.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	s = cases.Fold().String(s)
	s = apostrophes.Replace(s)
	for _, r := range nameReplacements {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return strings.Join(strings.Fields(s), " ")
}

// BestMatch returns the candidate whose normalized form best matches name.
// An exact normalized match wins outright. Candidates where one key
// contains the other are ranked by similarity with no floor; the rest must
// reach MinSimilarity.
func BestMatch(name string, candidates []string) (string, bool) {
	key := NormalizeName(name)
	if key == "" {
		return "", false
	}

	best, bestScore := "", 0.0
	for _, c := range candidates {
		ck := NormalizeName(c)
		if ck == "" {
			continue
		}
		if ck == key {
			return c, true
		}

		score := levenshtein.Similarity(key, ck, nil)
		contained := strings.Contains(ck, key) || strings.Contains(key, ck)
		if score > bestScore && (contained || score > MinSimilarity) {
			best, bestScore = c, score
		}
	}
	return best, best != ""
}
