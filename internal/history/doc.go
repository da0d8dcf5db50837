// Package history provides the version history recorder for issuemesh.
//
// Every successful mutation submits an Entry; the recorder turns it into a
// git commit of the snapshot file and, when configured, pushes the current
// branch to a remote. Recording is fire-and-forget: Record never blocks the
// caller and never reports failure. Entries are queued (bounded) and applied
// by a single worker goroutine in submission order; when the queue is full
// the entry is dropped and counted.
//
// A commit captures whatever the snapshot file holds when the worker gets to
// it, which may already include later mutations. The history is therefore
// coarse-grained but never ahead of the durable snapshot. Commits that would
// be empty are skipped.
package history
