// Package memory provides the in-memory record store for issuemesh.
package memory

import "github.com/yndnr/issuemesh-go/internal/core/domain"

// Store is the authoritative collection of issues plus the identifier
// allocator.
//
// Store is not safe for concurrent use. It is owned by a single goroutine
// (the issue service actor). Writers stage changes on a Clone and swap it in
// once the change is durable; published *domain.Issue values are never
// modified in place, so they may be shared with readers on other goroutines.
type Store struct {
	nextID int64

	// issues in creation order.
	issues []*domain.Issue

	// Primary index: issue ID -> position in issues.
	index map[int64]int
}

// New creates a store from a loaded document. A nil document yields an
// empty store. The counter is normalized so it is never behind the ids in
// use: it starts at max(nextId, maxID+1, 1).
func New(doc *domain.Document) *Store {
	if doc == nil {
		doc = domain.NewDocument()
	}

	s := &Store{
		nextID: doc.NextID,
		issues: make([]*domain.Issue, 0, len(doc.Issues)),
		index:  make(map[int64]int, len(doc.Issues)),
	}
	for _, issue := range doc.Issues {
		if issue == nil {
			continue
		}
		s.index[issue.ID] = len(s.issues)
		s.issues = append(s.issues, issue)
	}

	if max := doc.MaxID(); s.nextID <= max {
		s.nextID = max + 1
	}
	if s.nextID < 1 {
		s.nextID = 1
	}
	return s
}

// NextID returns the value the next Allocate call will return.
func (s *Store) NextID() int64 {
	return s.nextID
}

// Allocate returns the current counter value and increments it.
// Identifiers are never reused.
func (s *Store) Allocate() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// AdvanceTo raises the counter to at least next. It never lowers it.
func (s *Store) AdvanceTo(next int64) {
	if next > s.nextID {
		s.nextID = next
	}
}

// Find returns the issue with the given id.
// The returned issue is shared: callers must Clone it before modifying.
func (s *Store) Find(id int64) (*domain.Issue, error) {
	pos, ok := s.index[id]
	if !ok {
		return nil, domain.ErrIssueNotFound.Detailf("id %d", id)
	}
	return s.issues[pos], nil
}

// Append adds a new issue at the end of the creation order.
func (s *Store) Append(issue *domain.Issue) error {
	if _, exists := s.index[issue.ID]; exists {
		return domain.ErrValidation.Detailf("duplicate issue id %d", issue.ID)
	}
	s.index[issue.ID] = len(s.issues)
	s.issues = append(s.issues, issue)
	if issue.ID >= s.nextID {
		s.nextID = issue.ID + 1
	}
	return nil
}

// Put replaces an existing issue, keeping its position.
func (s *Store) Put(issue *domain.Issue) error {
	pos, ok := s.index[issue.ID]
	if !ok {
		return domain.ErrIssueNotFound.Detailf("id %d", issue.ID)
	}
	s.issues[pos] = issue
	return nil
}

// Len returns the number of issues.
func (s *Store) Len() int {
	return len(s.issues)
}

// Clone returns a copy that can be modified without affecting s.
// Issues are shared, not copied.
func (s *Store) Clone() *Store {
	clone := &Store{
		nextID: s.nextID,
		issues: make([]*domain.Issue, len(s.issues), len(s.issues)+1),
		index:  make(map[int64]int, len(s.index)+1),
	}
	copy(clone.issues, s.issues)
	for id, pos := range s.index {
		clone.index[id] = pos
	}
	return clone
}

// Document returns the store state as a detached document.
// The issue slice is copied; the issues are shared.
func (s *Store) Document() *domain.Document {
	issues := make([]*domain.Issue, len(s.issues))
	copy(issues, s.issues)
	return &domain.Document{
		NextID: s.nextID,
		Issues: issues,
	}
}
