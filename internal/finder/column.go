package finder

import (
	"github.com/sells-group/school-finder/internal/model"
)

// ResolveColumn picks the cut-off column for a school. The affiliated variant
// applies only to posting groups, and only when affiliated names this school
// exactly.
func ResolveColumn(year int, g model.Group, school, affiliated string) model.ColumnKey {
	return model.ColumnKey{
		Year:       year,
		Group:      g,
		Affiliated: !g.Integrated() && affiliated != "" && affiliated == school,
	}
}
