// Package domain defines the core domain models for issuemesh.
package domain

import (
	"strings"
	"time"
)

// DefaultActor is used when a mutation does not name its author or creator.
const DefaultActor = "Anonymous"

// Status is the lifecycle state of an issue.
type Status string

// Issue statuses. The string values are the wire values.
const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusClosed     Status = "Closed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	default:
		return false
	}
}

// Issue is a tracked record.
//
// Published issues are treated as immutable: a mutation clones the issue,
// modifies the clone and replaces it in the store.
type Issue struct {
	// ID is assigned from the store counter and never changes.
	ID int64 `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	CreatedBy   string `json:"createdBy"`

	// Comments is append-only, in insertion order.
	Comments []*Comment `json:"comments"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is an immutable note attached to an issue.
type Comment struct {
	// ID is derived from the creation instant in Unix milliseconds.
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewIssue creates an open issue with no comments.
func NewIssue(id int64, title, description, createdBy string, now time.Time) *Issue {
	now = now.UTC()
	return &Issue{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusOpen,
		CreatedBy:   ActorOrDefault(createdBy),
		Comments:    []*Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a copy of the issue with its own comment slice.
// Comments themselves are immutable and shared.
func (i *Issue) Clone() *Issue {
	if i == nil {
		return nil
	}
	clone := *i
	clone.Comments = make([]*Comment, len(i.Comments), len(i.Comments)+1)
	copy(clone.Comments, i.Comments)
	return &clone
}

// Validate checks the basic shape of an issue.
func (i *Issue) Validate() error {
	if i.ID <= 0 {
		return ErrValidation.Detailf("issue id must be positive, got %d", i.ID)
	}
	if strings.TrimSpace(i.Title) == "" {
		return ErrValidation.Detailf("issue #%d: title is required", i.ID)
	}
	if !i.Status.Valid() {
		return ErrValidation.Detailf("issue #%d: invalid status %q", i.ID, i.Status)
	}
	for n, c := range i.Comments {
		if c == nil {
			return ErrValidation.Detailf("issue #%d: comment %d is null", i.ID, n+1)
		}
	}
	return nil
}

// Apply overwrites exactly the attributes present in fields.
// It validates before modifying anything.
func (i *Issue) Apply(fields IssueFields, now time.Time) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	if fields.Title != nil {
		i.Title = *fields.Title
	}
	if fields.Description != nil {
		i.Description = *fields.Description
	}
	if fields.Status != nil {
		i.Status = *fields.Status
	}
	i.UpdatedAt = now.UTC()
	return nil
}

// AddComment appends a new comment and returns it.
// The comment id is the creation instant in milliseconds, bumped past the
// previous comment's id when two comments land in the same millisecond.
func (i *Issue) AddComment(author, text string, now time.Time) *Comment {
	now = now.UTC()
	id := now.UnixMilli()
	if n := len(i.Comments); n > 0 && i.Comments[n-1].ID >= id {
		id = i.Comments[n-1].ID + 1
	}

	c := &Comment{
		ID:        id,
		Author:    ActorOrDefault(author),
		Text:      text,
		CreatedAt: now,
	}
	i.Comments = append(i.Comments, c)
	i.UpdatedAt = now
	return c
}

// IssueFields carries the caller-supplied attributes of an update.
// A nil pointer means the attribute is left unchanged.
type IssueFields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// Validate checks the present fields.
func (f IssueFields) Validate() error {
	if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return ErrValidation.WithDetails("title must not be empty")
	}
	if f.Status != nil && !f.Status.Valid() {
		return ErrValidation.Detailf("invalid status %q", *f.Status)
	}
	return nil
}

// Empty reports whether no attribute is present.
func (f IssueFields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.Status == nil
}

// ActorOrDefault returns name, or DefaultActor if name is blank.
func ActorOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultActor
	}
	return name
}
