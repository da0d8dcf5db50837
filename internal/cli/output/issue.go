package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

const (
	timeLayout     = "2006-01-02 15:04"
	titleWidth     = 48
	wideTitleWidth = 80
)

// Issues renders a list of issues, one per row.
type Issues []*domain.Issue

// Table implements Tabular.
func (l Issues) Table(wide bool) *Table {
	t := &Table{Headers: []string{"ID", "STATUS", "TITLE", "CREATED BY", "COMMENTS", "UPDATED"}}
	if wide {
		t.Headers = append(t.Headers, "CREATED", "DESCRIPTION")
	}

	width := titleWidth
	if wide {
		width = wideTitleWidth
	}
	for _, is := range l {
		row := []string{
			strconv.FormatInt(is.ID, 10),
			string(is.Status),
			truncate(is.Title, width),
			orDash(is.CreatedBy),
			strconv.Itoa(len(is.Comments)),
			formatTime(is.UpdatedAt),
		}
		if wide {
			row = append(row, formatTime(is.CreatedAt), truncate(orDash(is.Description), wideTitleWidth))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// IssueDetail renders one issue as field/value rows followed by its
// comments. Its JSON form is the issue itself.
type IssueDetail struct {
	*domain.Issue
}

// Table implements Tabular.
func (d IssueDetail) Table(bool) *Table {
	is := d.Issue
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("id", strconv.FormatInt(is.ID, 10))
	t.AddRow("title", is.Title)
	t.AddRow("status", string(is.Status))
	t.AddRow("createdBy", orDash(is.CreatedBy))
	t.AddRow("createdAt", formatTime(is.CreatedAt))
	t.AddRow("updatedAt", formatTime(is.UpdatedAt))
	t.AddRow("description", orDash(is.Description))
	for i, c := range is.Comments {
		t.AddRow(fmt.Sprintf("comment %d", i+1), fmt.Sprintf("%s (%s): %s", orDash(c.Author), formatTime(c.CreatedAt), c.Text))
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
