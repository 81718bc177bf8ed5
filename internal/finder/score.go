package finder

import (
	"strconv"
	"strings"

	"github.com/sells-group/school-finder/internal/model"
)

// ParseScore extracts a comparable cut-off from a raw cell. It reports false
// when the cell holds no usable score.
//
// Integrated programme cells carry a plain score with an optional trailing
// qualifier ("7M-" -> 7). Posting group cells pack an AL range into 3 or 4
// digits; only the lower bound is kept ("2125" -> 21, "922" -> 9).
func ParseScore(raw string, g model.Group) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" || raw == "--" {
		return 0, false
	}

	digits := onlyDigits(raw)
	if !g.Integrated() {
		switch len(digits) {
		case 4:
			digits = digits[:2]
		case 3:
			digits = digits[:1]
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
