// Package history provides the version history recorder for issuemesh.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/time/rate"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
	"github.com/yndnr/issuemesh-go/internal/telemetry/metric"
)

// Defaults for GitConfig.
const (
	DefaultQueueSize   = 256
	DefaultRemote      = "origin"
	DefaultPushTimeout = 30 * time.Second
	DefaultAuthorName  = "issuemesh"
	DefaultAuthorEmail = "issuemesh@localhost"
)

// GitConfig configures a GitRecorder.
type GitConfig struct {
	// Path is the file committed on every entry (the snapshot).
	Path string

	// RepoDir is the repository working tree. Empty means the repository
	// containing Path.
	RepoDir string

	// Init creates the repository when none is found.
	Init bool

	// AutoPush pushes the current branch after each commit when Remote
	// exists.
	AutoPush bool
	Remote   string

	// RemoteURL, when set, creates Remote or points it at this URL.
	RemoteURL string

	// PushTimeout bounds a single push.
	PushTimeout time.Duration

	// PushInterval is the minimum time between pushes. Commits made while
	// a push is held back are carried by the next one. Zero pushes after
	// every commit.
	PushInterval time.Duration

	QueueSize int

	AuthorName  string
	AuthorEmail string

	Logger  *slog.Logger
	Metrics *metric.Registry
}

func (c *GitConfig) applyDefaults() {
	if c.Remote == "" {
		c.Remote = DefaultRemote
	}
	if c.PushTimeout <= 0 {
		c.PushTimeout = DefaultPushTimeout
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.AuthorName == "" {
		c.AuthorName = DefaultAuthorName
	}
	if c.AuthorEmail == "" {
		c.AuthorEmail = DefaultAuthorEmail
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// GitRecorder commits the snapshot file to a git repository.
type GitRecorder struct {
	cfg     GitConfig
	logger  *slog.Logger
	metrics *metric.Registry

	repo *git.Repository
	wt   *git.Worktree
	rel  string // Path relative to the worktree root

	pushLimiter *rate.Limiter
	pushPending bool // worker goroutine only

	mu     sync.RWMutex
	closed bool
	queue  chan Entry
	done   chan struct{}
}

// NewGitRecorder opens the repository and starts the worker.
func NewGitRecorder(cfg GitConfig) (*GitRecorder, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history: path is required")
	}
	cfg.applyDefaults()

	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("history: resolve path: %w", err)
	}
	repoDir := cfg.RepoDir
	if repoDir == "" {
		repoDir = filepath.Dir(absPath)
	}

	repo, err := openRepository(repoDir, cfg.Init)
	if err != nil {
		return nil, err
	}
	if cfg.RemoteURL != "" {
		if err := ensureRemote(repo, cfg.Remote, cfg.RemoteURL); err != nil {
			return nil, err
		}
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("history: worktree: %w", err)
	}

	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("history: resolve worktree root: %w", err)
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("history: %s is outside the repository at %s", absPath, root)
	}

	r := &GitRecorder{
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "history"),
		metrics: cfg.Metrics,
		repo:    repo,
		wt:      wt,
		rel:     filepath.ToSlash(rel),
		queue:   make(chan Entry, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	if cfg.PushInterval > 0 {
		r.pushLimiter = rate.NewLimiter(rate.Every(cfg.PushInterval), 1)
	}

	if cfg.AutoPush && !r.hasRemote() {
		r.logger.Info("remote not configured, history will not be pushed", "remote", cfg.Remote)
	}

	go r.run()

	r.logger.Info("history recorder started",
		"repo", root,
		"file", r.rel,
		"auto_push", cfg.AutoPush,
	)
	return r, nil
}

func openRepository(dir string, initIfMissing bool) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) || !initIfMissing {
		return nil, fmt.Errorf("history: open repository at %s: %w", dir, err)
	}

	repo, err = git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("history: init repository at %s: %w", dir, err)
	}
	return repo, nil
}

func ensureRemote(repo *git.Repository, name, url string) error {
	remote, err := repo.Remote(name)
	switch {
	case err == nil:
		if urls := remote.Config().URLs; len(urls) == 1 && urls[0] == url {
			return nil
		}
		if err := repo.DeleteRemote(name); err != nil {
			return fmt.Errorf("history: replace remote %s: %w", name, err)
		}
	case !errors.Is(err, git.ErrRemoteNotFound):
		return fmt.Errorf("history: remote %s: %w", name, err)
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: name, URLs: []string{url}})
	if err != nil {
		return fmt.Errorf("history: create remote %s: %w", name, err)
	}
	return nil
}

// Record implements Recorder.
func (r *GitRecorder) Record(e Entry) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("history entry after close dropped", "message", e.Message)
		r.metrics.IncHistoryDropped()
		return
	}

	select {
	case r.queue <- e:
	default:
		r.logger.Warn("history queue full, entry dropped",
			"queue_size", cap(r.queue),
			"actor", e.Actor,
			"message", e.Message,
		)
		r.metrics.IncHistoryDropped()
	}
}

// Close implements Recorder. Entries already queued are still committed;
// a push held back by PushInterval is attempted before returning.
func (r *GitRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("history: close: %w", ctx.Err())
	}
}

func (r *GitRecorder) run() {
	defer close(r.done)

	for e := range r.queue {
		r.apply(e)
	}

	if r.pushPending {
		r.push(true)
	}
}

func (r *GitRecorder) apply(e Entry) {
	committed, err := r.commit(e)
	if err != nil {
		r.logger.Error("history commit failed",
			"actor", e.Actor,
			"message", e.Message,
			"error", domain.ErrHistoryRecord.WithCause(err),
		)
		r.metrics.IncHistoryCommit(metric.ResultError)
		return
	}
	if !committed {
		r.logger.Debug("history commit skipped, nothing changed", "message", e.Message)
		r.metrics.IncHistoryCommit(metric.ResultSkipped)
		return
	}
	r.metrics.IncHistoryCommit(metric.ResultOK)

	if r.cfg.AutoPush {
		r.pushPending = true
		r.push(false)
	}
}

// commit stages the snapshot file and commits it. committed is false when
// the file matches HEAD.
func (r *GitRecorder) commit(e Entry) (committed bool, err error) {
	if _, err := r.wt.Add(r.rel); err != nil {
		return false, fmt.Errorf("stage %s: %w", r.rel, err)
	}

	status, err := r.wt.Status()
	if err != nil {
		return false, fmt.Errorf("status: %w", err)
	}
	if fs, ok := status[r.rel]; !ok || fs.Staging == git.Unmodified {
		return false, nil
	}

	hash, err := r.wt.Commit(e.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.cfg.AuthorName,
			Email: r.cfg.AuthorEmail,
			When:  time.Now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	r.logger.Debug("history committed", "hash", hash.String(), "actor", e.Actor)
	return true, nil
}

// push sends the current branch to the remote. Unless force is set the
// push may be held back by the rate limiter; pushPending stays set until a
// push is attempted.
func (r *GitRecorder) push(force bool) {
	if !r.hasRemote() {
		r.pushPending = false
		r.metrics.IncHistoryPush(metric.ResultSkipped)
		return
	}
	if !force && r.pushLimiter != nil && !r.pushLimiter.Allow() {
		return
	}
	r.pushPending = false

	head, err := r.repo.Head()
	if err != nil {
		r.logger.Error("history push failed", "error", fmt.Errorf("resolve HEAD: %w", err))
		r.metrics.IncHistoryPush(metric.ResultError)
		return
	}
	branch := head.Name().String()

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.PushTimeout)
	defer cancel()

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.cfg.Remote,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(branch + ":" + branch)},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		r.logger.Error("history push failed",
			"remote", r.cfg.Remote,
			"branch", branch,
			"error", domain.ErrHistoryRecord.WithCause(err),
		)
		r.metrics.IncHistoryPush(metric.ResultError)
		return
	}

	r.logger.Debug("history pushed", "remote", r.cfg.Remote, "branch", branch)
	r.metrics.IncHistoryPush(metric.ResultOK)
}

func (r *GitRecorder) hasRemote() bool {
	_, err := r.repo.Remote(r.cfg.Remote)
	return err == nil
}
