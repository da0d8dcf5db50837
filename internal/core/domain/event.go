// Package domain defines the core domain models for issuemesh.
package domain

// EventType discriminates server-to-client events.
type EventType string

// Server-to-client event types.
const (
	EventInit         EventType = "init"
	EventIssueCreated EventType = "issue_created"
	EventIssueUpdated EventType = "issue_updated"
	EventCommentAdded EventType = "comment_added"
	EventError        EventType = "error"
)

// Event is a state-change notification delivered to observers.
//
// The struct is flat so that its JSON form matches the wire protocol:
// only the fields relevant to Type are set.
type Event struct {
	Type    EventType `json:"type"`
	Data    *Document `json:"data,omitempty"`
	Issue   *Issue    `json:"issue,omitempty"`
	IssueID int64     `json:"issueId,omitempty"`
	Comment *Comment  `json:"comment,omitempty"`
	Message string    `json:"message,omitempty"`
}

// NewInitEvent returns the full-state snapshot sent on connect.
func NewInitEvent(doc *Document) Event {
	return Event{Type: EventInit, Data: doc}
}

// NewIssueCreatedEvent returns the delta for a new issue.
func NewIssueCreatedEvent(issue *Issue) Event {
	return Event{Type: EventIssueCreated, Issue: issue}
}

// NewIssueUpdatedEvent returns the delta for an updated issue.
// The full issue is sent, not a diff.
func NewIssueUpdatedEvent(issue *Issue) Event {
	return Event{Type: EventIssueUpdated, Issue: issue}
}

// NewCommentAddedEvent returns the incremental delta for a new comment.
func NewCommentAddedEvent(issueID int64, comment *Comment) Event {
	return Event{Type: EventCommentAdded, IssueID: issueID, Comment: comment}
}

// NewErrorEvent returns an error notification for a single requester.
func NewErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

// Observer is anything that can receive events. Transports implement it;
// the core never sees connection details.
type Observer interface {
	// ID uniquely identifies the observer among those registered.
	ID() string

	// Send delivers an event or fails. It must not block for long.
	Send(Event) error
}
