// Package service provides domain services for issuemesh.
//
// IssueService is the single owner of the record store. Every mutation is
// submitted to its actor goroutine and applied in order:
//
//  1. Validate the request and stage the change on a copy of the store
//  2. Persist the whole document (a failure aborts the mutation)
//  3. Swap the copy in and broadcast the delta to every observer
//  4. Submit a history entry, which never blocks and never fails the call
//
// Observers subscribe through the same actor, so the init snapshot they
// receive and the deltas that follow it never overlap or leave gaps.
//
// The service depends only on small interfaces (Persister, Broadcaster,
// HistoryRecorder, Reloader) so storage and transports can be swapped in
// tests.
package service
