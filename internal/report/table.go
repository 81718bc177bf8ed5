package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sells-group/school-finder/internal/finder"
)

// Table writes a human-readable summary and one line per school.
func Table(out io.Writer, res finder.Results) error {
	_, _ = fmt.Fprintf(out, "Found %d schools (groups: %s)\n", len(res.Items), groupNames(res))
	if res.Reference != nil {
		_, _ = fmt.Fprintf(out, "Reference: %.4f, %.4f\n", res.Reference.Y(), res.Reference.X())
	}
	if len(res.Items) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCHOOL\tTOWN\tSCORES\tDISTANCE\tURL")
	_, _ = fmt.Fprintln(w, "------\t----\t------\t--------\t---")
	for _, r := range res.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.School.Name,
			orDash(r.School.Town),
			r.Scores,
			FormatDistance(r),
			orDash(r.School.DetailURL),
		)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
