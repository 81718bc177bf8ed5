package finder

import (
	"strings"

	"github.com/sells-group/school-finder/internal/model"
)

// NotAvailable is shown when none of the eligible groups has a current-year
// cut-off.
const NotAvailable = "N/A"

// FormatScores renders the raw current-year cells of the eligible groups as
// "PG3: 2125, IP: 7M-". Raw strings are shown so the range upper bound that
// ParseScore drops stays visible.
func FormatScores(s *model.School, groups []model.Group, year int, affiliated string) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		raw := strings.TrimSpace(s.Cutoff(ResolveColumn(year, g, s.Name, affiliated)))
		if raw == "" || raw == "-" || raw == "--" {
			continue
		}
		parts = append(parts, g.String()+": "+raw)
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, ", ")
}
