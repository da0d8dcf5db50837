package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func sampleIssue() *domain.Issue {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	is := domain.NewIssue(7, "Login page broken", "Submitting the form\tdoes nothing", "alice", created)
	is.AddComment("bob", "Confirmed on Firefox", created.Add(time.Hour))
	return is
}

func render(t *testing.T, p Printer, data any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Print(&buf, data); err != nil {
		t.Fatalf("Print(%s): %v", p.Format, err)
	}
	return buf.String()
}

func TestPrinter_JSON(t *testing.T) {
	out := render(t, Printer{Format: FormatJSON}, sampleIssue())
	if !strings.Contains(out, `"createdBy": "alice"`) {
		t.Errorf("indented JSON missing createdBy:\n%s", out)
	}

	// IssueDetail prints as the bare issue.
	out = render(t, Printer{Format: FormatJSON}, IssueDetail{sampleIssue()})
	if !strings.HasPrefix(out, "{\n  \"id\": 7,\n  \"title\": \"Login page broken\"") {
		t.Errorf("IssueDetail JSON = %s", out)
	}
}

func TestPrinter_YAML(t *testing.T) {
	doc := &domain.Document{NextID: 8, Issues: []*domain.Issue{sampleIssue()}}
	out := render(t, Printer{Format: FormatYAML}, doc)

	for _, want := range []string{"nextId: 8", "createdBy: alice", "status: Open", "author: bob"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "{") {
		t.Errorf("YAML should use block style:\n%s", out)
	}
	if strings.Index(out, "nextId") > strings.Index(out, "issues") {
		t.Errorf("nextId should precede issues:\n%s", out)
	}
}

func TestPrinter_IssueTable(t *testing.T) {
	issues := Issues{sampleIssue()}

	out := render(t, Printer{Format: FormatTable}, issues)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") || strings.Contains(lines[0], "DESCRIPTION") {
		t.Errorf("header = %q", lines[0])
	}
	for _, want := range []string{"7", "Open", "Login page broken", "alice", "1"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}

	wide := render(t, Printer{Format: FormatTable, Wide: true}, issues)
	if !strings.Contains(wide, "DESCRIPTION") {
		t.Error("wide table should include DESCRIPTION")
	}
	if strings.Contains(wide, "\t") {
		t.Error("tabs should be stripped from cells")
	}
}

func TestPrinter_IssueDetailTable(t *testing.T) {
	out := render(t, Printer{Format: FormatTable, NoHeaders: true}, IssueDetail{sampleIssue()})
	if strings.Contains(out, "FIELD") {
		t.Error("NoHeaders should suppress the header")
	}
	for _, want := range []string{"title", "Login page broken", "comment 1", "bob", "Confirmed on Firefox"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestPrinter_TableFallback(t *testing.T) {
	out := render(t, Printer{}, map[string]int{"count": 3})
	if !strings.Contains(out, `"count": 3`) {
		t.Errorf("fallback output = %q, want JSON", out)
	}
	if out := render(t, Printer{}, nil); out != "" {
		t.Errorf("nil data printed %q", out)
	}
}
