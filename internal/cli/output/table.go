package output

import (
	"io"
	"strings"
	"text/tabwriter"
)

// Tabular values know how to lay themselves out as a table.
type Tabular interface {
	Table(wide bool) *Table
}

// Table is a header row plus data rows, written with aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends one row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Write aligns the columns two spaces apart. Line breaks and tabs inside a
// cell become spaces.
func (t *Table) Write(w io.Writer, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := t.Rows
	if headers && len(t.Headers) > 0 {
		rows = append([][]string{t.Headers}, rows...)
	}
	for _, row := range rows {
		line := make([]string, len(row))
		for i, cell := range row {
			line[i] = flatten.Replace(cell)
		}
		if _, err := io.WriteString(tw, strings.Join(line, "\t")+"\n"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// truncate cuts s to n runes, ending in "..." when there is room for it.
func truncate(s string, n int) string {
	r := []rune(s)
	switch {
	case len(r) <= n:
		return s
	case n <= 3:
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
