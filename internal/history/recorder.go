// Package history provides the version history recorder for issuemesh.
package history

import "context"

// Entry is one history record: who changed what.
type Entry struct {
	// Actor is the display name of whoever made the change.
	Actor string

	// Message is the commit summary.
	Message string
}

// Recorder accepts history entries.
type Recorder interface {
	// Record submits an entry. It must not block and never fails.
	Record(Entry)

	// Close stops accepting entries and waits for queued ones to be
	// applied, or for ctx to end.
	Close(ctx context.Context) error
}

// Nop discards entries. It is used when history is disabled or no
// repository is available.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(Entry) {}

// Close implements Recorder.
func (Nop) Close(context.Context) error { return nil }
