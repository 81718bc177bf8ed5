package finder

import (
	"github.com/sells-group/school-finder/internal/model"
)

// Band maps the scores in [Min, Max] to the posting groups a student may
// apply under, in display order.
type Band struct {
	Min    int
	Max    int
	Groups []model.Group
}

// Bands is an ordered, non-overlapping set of score bands.
type Bands []Band

// DefaultBands returns the posting-group policy. The edges at 20 and 25 are
// uneven and must stay that way.
func DefaultBands() Bands {
	return Bands{
		{Min: MinScore, Max: 20, Groups: []model.Group{model.GroupPG3, model.GroupIP}},
		{Min: 21, Max: 22, Groups: []model.Group{model.GroupPG2, model.GroupPG3}},
		{Min: 23, Max: 24, Groups: []model.Group{model.GroupPG2}},
		{Min: 25, Max: 25, Groups: []model.Group{model.GroupPG1, model.GroupPG2}},
		{Min: 26, Max: MaxScore, Groups: []model.Group{model.GroupPG1}},
	}
}

// Resolve returns the eligible groups for score. Scores below the first band
// fall into it, scores above the last band fall into the last one.
func (b Bands) Resolve(score int) []model.Group {
	if len(b) == 0 {
		return nil
	}
	for _, band := range b {
		if score <= band.Max {
			return cloneGroups(band.Groups)
		}
	}
	return cloneGroups(b[len(b)-1].Groups)
}

func cloneGroups(gs []model.Group) []model.Group {
	out := make([]model.Group, len(gs))
	copy(out, gs)
	return out
}
