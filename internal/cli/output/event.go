package output

import (
	"fmt"
	"io"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// EventWriter writes streamed events, one record per event.
type EventWriter struct {
	w      io.Writer
	format Format
	now    func() time.Time
}

// NewEventWriter creates an event writer for the given format.
func NewEventWriter(w io.Writer, format Format) *EventWriter {
	return &EventWriter{w: w, format: format, now: time.Now}
}

// Write renders one event: a compact JSON line, a YAML document or a
// human-readable line.
func (e *EventWriter) Write(ev domain.Event) error {
	switch e.format {
	case FormatJSON:
		return writeJSON(e.w, ev, false)
	case FormatYAML:
		if _, err := io.WriteString(e.w, "---\n"); err != nil {
			return err
		}
		return writeYAML(e.w, ev)
	default:
		_, err := fmt.Fprintf(e.w, "%s  %s\n", e.now().Format("15:04:05"), Describe(ev))
		return err
	}
}

// Describe summarizes an event in one line.
func Describe(ev domain.Event) string {
	switch ev.Type {
	case domain.EventInit:
		if ev.Data == nil {
			return "init"
		}
		return fmt.Sprintf("init: %d issues, next id %d", len(ev.Data.Issues), ev.Data.NextID)
	case domain.EventIssueCreated:
		if ev.Issue == nil {
			break
		}
		return fmt.Sprintf("issue #%d created by %s: %s", ev.Issue.ID, orDash(ev.Issue.CreatedBy), ev.Issue.Title)
	case domain.EventIssueUpdated:
		if ev.Issue == nil {
			break
		}
		return fmt.Sprintf("issue #%d updated [%s]: %s", ev.Issue.ID, ev.Issue.Status, ev.Issue.Title)
	case domain.EventCommentAdded:
		if ev.Comment == nil {
			break
		}
		return fmt.Sprintf("issue #%d commented by %s: %q", ev.IssueID, orDash(ev.Comment.Author), ev.Comment.Text)
	case domain.EventError:
		return "error: " + ev.Message
	}
	return string(ev.Type)
}
