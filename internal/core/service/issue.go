// Package service provides domain services for issuemesh.
//
// IssueService is the mutation processor: it owns the record store and
// applies every create, update and comment request in one goroutine.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
	"github.com/yndnr/issuemesh-go/internal/history"
	"github.com/yndnr/issuemesh-go/internal/storage/memory"
	"github.com/yndnr/issuemesh-go/internal/telemetry/metric"
)

// Mutation kinds, used as metric labels.
const (
	KindCreateIssue = "create_issue"
	KindUpdateIssue = "update_issue"
	KindAddComment  = "add_comment"
	KindResync      = "resync"
)

// Persister writes the whole document durably.
type Persister interface {
	Save(doc *domain.Document) error
}

// Reloader re-reads the durable document after an out-of-band change.
// changed is false when the file still holds what was last written.
type Reloader interface {
	Reload() (doc *domain.Document, changed bool, err error)
}

// Broadcaster fans events out to registered observers.
type Broadcaster interface {
	Register(o domain.Observer)
	Unregister(id string)
	Broadcast(ev domain.Event) int
	Send(id string, ev domain.Event) error
	Len() int
}

// HistoryRecorder accepts version history entries without blocking.
type HistoryRecorder interface {
	Record(e history.Entry)
}

// Option configures an IssueService.
type Option func(*IssueService)

// WithHistory sets the version history recorder.
func WithHistory(h HistoryRecorder) Option {
	return func(s *IssueService) {
		s.history = h
	}
}

// WithReloader enables Resync.
func WithReloader(r Reloader) Option {
	return func(s *IssueService) {
		s.reloader = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *IssueService) {
		s.logger = l
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(s *IssueService) {
		s.metrics = m
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *IssueService) {
		s.now = now
	}
}

// IssueService applies mutations to the shared issue store.
//
// All access to the store happens on the actor goroutine started by Start.
// A mutation is staged on a copy of the store, persisted, and only then
// swapped in, so a failed write leaves the live state untouched. Once a
// request has been accepted by the actor it runs to completion even if the
// caller's context ends while it waits.
type IssueService struct {
	persister Persister
	hub       Broadcaster
	history   HistoryRecorder
	reloader  Reloader
	logger    *slog.Logger
	metrics   *metric.Registry
	now       func() time.Time

	// store is owned by the actor goroutine.
	store *memory.Store

	issues atomic.Int64

	ops       chan func()
	quit      chan struct{}
	done      chan struct{}
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewIssueService creates the service around a loaded store.
// Start must be called before any operation.
func NewIssueService(store *memory.Store, persister Persister, hub Broadcaster, opts ...Option) *IssueService {
	s := &IssueService{
		persister: persister,
		hub:       hub,
		history:   history.Nop{},
		logger:    slog.Default(),
		now:       time.Now,
		store:     store,
		ops:       make(chan func()),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "issue_service")
	s.issues.Store(int64(store.Len()))
	return s
}

// Start launches the actor goroutine. It is safe to call more than once.
func (s *IssueService) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
	})
}

// Stop stops accepting requests and waits for the request in progress to
// finish, or for ctx to end.
func (s *IssueService) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	if !s.started.Load() {
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *IssueService) run() {
	defer close(s.done)
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.quit:
			return
		}
	}
}

// submit runs fn on the actor goroutine and waits for it. A panic in fn is
// logged and reported as ErrInternalServer; the actor keeps running.
func (s *IssueService) submit(ctx context.Context, fn func()) error {
	if !s.started.Load() {
		return domain.ErrServiceUnavailable.WithDetails("service not started")
	}

	finished := make(chan struct{})
	var opErr error
	op := func() {
		defer close(finished)
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error("operation panicked", "panic", v, "stack", string(debug.Stack()))
				opErr = domain.ErrInternalServer.Detailf("operation panicked: %v", v)
			}
		}()
		fn()
	}

	select {
	case s.ops <- op:
	case <-s.quit:
		return domain.ErrServiceUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return opErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ============================================================================
// Mutations
// ============================================================================

// CreateIssueRequest contains parameters for issue creation.
type CreateIssueRequest struct {
	Title       string
	Description string
	CreatedBy   string
}

// CreateIssue allocates an id and stores a new open issue.
func (s *IssueService) CreateIssue(ctx context.Context, req *CreateIssueRequest) (*domain.Issue, error) {
	// 1. Validate input
	if req == nil || strings.TrimSpace(req.Title) == "" {
		err := domain.ErrValidation.WithDetails("title is required")
		s.metrics.ObserveMutation(KindCreateIssue, err)
		return nil, err
	}

	// 2. Apply on the actor
	var issue *domain.Issue
	var opErr error
	err := s.submit(ctx, func() {
		staged := s.store.Clone()
		issue = domain.NewIssue(staged.Allocate(), req.Title, req.Description, req.CreatedBy, s.now())
		if opErr = staged.Append(issue); opErr != nil {
			return
		}
		if opErr = s.commit(staged); opErr != nil {
			return
		}
		s.publish(domain.NewIssueCreatedEvent(issue), history.Entry{
			Actor:   issue.CreatedBy,
			Message: createdMessage(issue),
		})
	})
	if err == nil {
		err = opErr
	}

	s.metrics.ObserveMutation(KindCreateIssue, err)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "issue created", "issue_id", issue.ID, "actor", issue.CreatedBy)
	return issue, nil
}

// UpdateIssueRequest contains parameters for an issue update.
// Only the fields present are changed.
type UpdateIssueRequest struct {
	ID        int64
	Fields    domain.IssueFields
	UpdatedBy string
}

// UpdateIssue overwrites the supplied attributes of an existing issue.
func (s *IssueService) UpdateIssue(ctx context.Context, req *UpdateIssueRequest) (*domain.Issue, error) {
	// 1. Validate input
	if req == nil {
		err := domain.ErrValidation.WithDetails("request is required")
		s.metrics.ObserveMutation(KindUpdateIssue, err)
		return nil, err
	}
	if err := req.Fields.Validate(); err != nil {
		s.metrics.ObserveMutation(KindUpdateIssue, err)
		return nil, err
	}

	// 2. Apply on the actor
	var updated *domain.Issue
	var opErr error
	err := s.submit(ctx, func() {
		current, err := s.store.Find(req.ID)
		if err != nil {
			opErr = err
			return
		}

		updated = current.Clone()
		if opErr = updated.Apply(req.Fields, s.now()); opErr != nil {
			return
		}

		staged := s.store.Clone()
		if opErr = staged.Put(updated); opErr != nil {
			return
		}
		if opErr = s.commit(staged); opErr != nil {
			return
		}
		s.publish(domain.NewIssueUpdatedEvent(updated), history.Entry{
			Actor:   updaterName(req.UpdatedBy),
			Message: updatedMessage(updated.ID, req.UpdatedBy, req.Fields),
		})
	})
	if err == nil {
		err = opErr
	}

	s.metrics.ObserveMutation(KindUpdateIssue, err)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "issue updated", "issue_id", updated.ID, "actor", updaterName(req.UpdatedBy))
	return updated, nil
}

// AddCommentRequest contains parameters for adding a comment.
type AddCommentRequest struct {
	ID     int64
	Author string
	Text   string
}

// AddComment appends a comment to an existing issue and returns it.
func (s *IssueService) AddComment(ctx context.Context, req *AddCommentRequest) (*domain.Comment, error) {
	if req == nil {
		err := domain.ErrValidation.WithDetails("request is required")
		s.metrics.ObserveMutation(KindAddComment, err)
		return nil, err
	}

	var comment *domain.Comment
	var opErr error
	err := s.submit(ctx, func() {
		current, err := s.store.Find(req.ID)
		if err != nil {
			opErr = err
			return
		}

		updated := current.Clone()
		comment = updated.AddComment(req.Author, req.Text, s.now())

		staged := s.store.Clone()
		if opErr = staged.Put(updated); opErr != nil {
			return
		}
		if opErr = s.commit(staged); opErr != nil {
			return
		}
		s.publish(domain.NewCommentAddedEvent(updated.ID, comment), history.Entry{
			Actor:   comment.Author,
			Message: commentedMessage(updated.ID, comment),
		})
	})
	if err == nil {
		err = opErr
	}

	s.metrics.ObserveMutation(KindAddComment, err)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "comment added", "issue_id", req.ID, "comment_id", comment.ID, "actor", comment.Author)
	return comment, nil
}

// commit persists staged and swaps it in. On failure the live store is left
// as it was. Actor goroutine only.
func (s *IssueService) commit(staged *memory.Store) error {
	start := time.Now()
	err := s.persister.Save(staged.Document())
	s.metrics.ObserveSnapshotWrite(time.Since(start))
	if err != nil {
		s.logger.Error("snapshot write failed, mutation aborted", "error", err)
		return domain.ErrPersistence.WithCause(err)
	}

	s.store = staged
	s.issues.Store(int64(staged.Len()))
	return nil
}

// publish broadcasts ev and hands entry to the history recorder.
// Actor goroutine only.
func (s *IssueService) publish(ev domain.Event, entry history.Entry) {
	delivered := s.hub.Broadcast(ev)
	s.metrics.AddBroadcast(string(ev.Type), delivered)
	s.history.Record(entry)
}

// ============================================================================
// Observers
// ============================================================================

// Subscribe registers o and sends it the current state as an init event.
// Both happen on the actor, so o sees every later mutation exactly once and
// none that is already part of its init.
func (s *IssueService) Subscribe(ctx context.Context, o domain.Observer) error {
	var opErr error
	err := s.submit(ctx, func() {
		s.hub.Register(o)
		if opErr = s.hub.Send(o.ID(), domain.NewInitEvent(s.store.Document())); opErr != nil {
			s.hub.Unregister(o.ID())
			return
		}
		s.metrics.AddBroadcast(string(domain.EventInit), 1)
	})
	if err != nil {
		return err
	}
	if opErr != nil {
		return fmt.Errorf("send init to %s: %w", o.ID(), opErr)
	}
	return nil
}

// Unsubscribe removes an observer. It does not need the actor, so it also
// works while the service is stopping.
func (s *IssueService) Unsubscribe(_ context.Context, id string) {
	s.hub.Unregister(id)
}

// Snapshot returns the current document. The issues are shared and must
// not be modified.
func (s *IssueService) Snapshot(ctx context.Context) (*domain.Document, error) {
	var doc *domain.Document
	if err := s.submit(ctx, func() {
		doc = s.store.Document()
	}); err != nil {
		return nil, err
	}
	return doc, nil
}

// Resync replaces the live store with the durable document after it was
// edited out of band, and sends every observer a fresh init event. It
// reports whether anything changed. The id counter never moves backwards.
func (s *IssueService) Resync(ctx context.Context) (bool, error) {
	if s.reloader == nil {
		return false, nil
	}

	var changed bool
	var opErr error
	err := s.submit(ctx, func() {
		var doc *domain.Document
		doc, changed, opErr = s.reloader.Reload()
		if opErr != nil || !changed {
			return
		}

		next := memory.New(doc)
		next.AdvanceTo(s.store.NextID())
		s.store = next
		s.issues.Store(int64(next.Len()))

		s.publish(domain.NewInitEvent(next.Document()), history.Entry{
			Actor:   domain.DefaultActor,
			Message: resyncMessage(next.Len()),
		})
	})
	if err == nil {
		err = opErr
	}

	if err != nil {
		s.metrics.ObserveMutation(KindResync, err)
		s.logger.Warn("snapshot resync failed, keeping current state", "error", err)
		return false, err
	}
	if changed {
		s.metrics.ObserveMutation(KindResync, nil)
		s.logger.Info("snapshot changed on disk, state reloaded", "issues", s.issues.Load())
	}
	return changed, nil
}

// Stats reports live sizes for the metrics collector. It does not go
// through the actor.
func (s *IssueService) Stats() metric.Stats {
	return metric.Stats{
		Issues:    int(s.issues.Load()),
		Observers: s.hub.Len(),
	}
}
