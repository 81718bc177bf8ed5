package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/school-finder/internal/finder"
)

// SheetName is the worksheet holding the results.
const SheetName = "Schools"

var xlsxHeader = []string{"School", "Town", "Address", "Gender", "Scores", "Distance (km)", "Detail URL"}

// Workbook builds a workbook with one row per result.
func Workbook(res finder.Results) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range res.Items {
		row := sheet.AddRow()
		for _, v := range []string{r.School.Name, r.School.Town, r.School.Address, string(r.School.Gender), r.Scores} {
			row.AddCell().SetString(v)
		}
		dist := row.AddCell()
		if r.HasDistance {
			dist.SetFloatWithFormat(r.DistanceKM, "0.0")
		}
		row.AddCell().SetString(r.School.DetailURL)
	}
	return f, nil
}

// XLSX writes the results as an Excel workbook.
func XLSX(w io.Writer, res finder.Results) error {
	f, err := Workbook(res)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "report: write xlsx")
}
