package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

func TestDescribe(t *testing.T) {
	is := sampleIssue()
	tests := []struct {
		name string
		ev   domain.Event
		want string
	}{
		{"init", domain.NewInitEvent(&domain.Document{NextID: 8, Issues: []*domain.Issue{is}}), "init: 1 issues, next id 8"},
		{"created", domain.NewIssueCreatedEvent(is), "issue #7 created by alice: Login page broken"},
		{"updated", domain.NewIssueUpdatedEvent(is), "issue #7 updated [Open]: Login page broken"},
		{"comment", domain.NewCommentAddedEvent(7, is.Comments[0]), `issue #7 commented by bob: "Confirmed on Firefox"`},
		{"error", domain.NewErrorEvent("issue not found: id 9"), "error: issue not found: id 9"},
		{"created without issue", domain.Event{Type: domain.EventIssueCreated}, "issue_created"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.ev); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventWriter(t *testing.T) {
	ev := domain.NewErrorEvent("boom")

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewEventWriter(&buf, FormatTable)
		w.now = func() time.Time { return time.Date(2024, 1, 1, 9, 30, 5, 0, time.Local) }
		if err := w.Write(ev); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "09:30:05  error: boom\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewEventWriter(&buf, FormatJSON).Write(ev); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != `{"type":"error","message":"boom"}`+"\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewEventWriter(&buf, FormatYAML).Write(ev); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.HasPrefix(out, "---\n") || !strings.Contains(out, "message: boom") {
			t.Errorf("output = %q", out)
		}
	})
}
