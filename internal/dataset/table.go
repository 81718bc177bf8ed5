package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is the dataset as raw rows. Column order and unknown columns are
// preserved on write.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// NewTable creates an empty table with the given header.
func NewTable(header []string) *Table {
	t := &Table{index: make(map[string]int, len(header))}
	for _, col := range header {
		t.EnsureColumn(col)
	}
	return t
}

// ReadTableFile reads a raw table from path.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return ReadTable(f)
}

// ReadTable reads a raw table. Blank lines are skipped, cells are trimmed and
// short rows are padded to the header width.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read csv")
	}
	if len(records) == 0 {
		return nil, eris.New("dataset: csv has no header")
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}
	t := NewTable(header)
	if len(t.header) != len(header) {
		return nil, eris.New("dataset: csv header has duplicate columns")
	}

	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]string, len(t.header))
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// WriteFile writes the table to path, replacing any existing file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	if err := t.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "dataset: close %s", path)
}

// Write encodes the table as CSV.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "dataset: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "dataset: flush")
}

// Header returns a copy of the column names.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether the table has a column named col.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// EnsureColumn appends col to the header if absent, padding existing rows
// with empty cells.
func (t *Table) EnsureColumn(col string) {
	if _, ok := t.index[col]; ok {
		return
	}
	t.index[col] = len(t.header)
	t.header = append(t.header, col)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
}

// Get returns the cell at (row, col), or "" for unknown columns.
func (t *Table) Get(row int, col string) string {
	idx, ok := t.index[col]
	if !ok {
		return ""
	}
	return t.rows[row][idx]
}

// Set writes a cell, adding the column when needed.
func (t *Table) Set(row int, col, value string) {
	t.EnsureColumn(col)
	t.rows[row][t.index[col]] = value
}

// AppendRow adds a row built from column/value pairs. Unknown columns are
// appended to the header in sorted order.
func (t *Table) AppendRow(values map[string]string) {
	var missing []string
	for col := range values {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	for _, col := range missing {
		t.EnsureColumn(col)
	}
	row := make([]string, len(t.header))
	for col, v := range values {
		row[t.index[col]] = v
	}
	t.rows = append(t.rows, row)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
