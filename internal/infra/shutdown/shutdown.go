package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"
)

// Step releases one component before the deadline carried by ctx.
type Step func(ctx context.Context) error

type step struct {
	name string
	run  Step
}

// Coordinator waits for a stop request and then runs the registered steps.
type Coordinator struct {
	timeout time.Duration
	log     *slog.Logger
	signals []os.Signal

	mu    sync.Mutex
	steps []step

	stop    chan string
	stopped chan struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger reports progress to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithSignals replaces SIGINT and SIGTERM as the signals that start
// shutdown.
func WithSignals(sig ...os.Signal) Option {
	return func(c *Coordinator) { c.signals = sig }
}

// New returns a Coordinator giving all steps together at most timeout.
func New(timeout time.Duration, opts ...Option) *Coordinator {
	c := &Coordinator{
		timeout: timeout,
		log:     slog.Default(),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		stop:    make(chan string, 1),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "shutdown")
	return c
}

// Register adds a step. Steps run in reverse order of registration.
func (c *Coordinator) Register(name string, run Step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, step{name: name, run: run})
}

// Stop requests shutdown without a signal. Only the first reason is kept
// and Stop never blocks.
func (c *Coordinator) Stop(reason string) {
	select {
	case c.stop <- reason:
	default:
	}
}

// Wait blocks until a signal, Stop or the end of ctx, then runs every
// step. Step errors are joined, each prefixed with its name.
func (c *Coordinator) Wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, c.signals...)
	defer signal.Stop(sigCh)

	var reason string
	select {
	case sig := <-sigCh:
		reason = "signal " + sig.String()
	case reason = <-c.stop:
	case <-ctx.Done():
		reason = context.Cause(ctx).Error()
	}
	c.log.Info("shutting down", "reason", reason, "timeout", c.timeout)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	defer close(c.stopped)
	return c.runSteps(ctx)
}

func (c *Coordinator) runSteps(ctx context.Context) error {
	c.mu.Lock()
	steps := slices.Clone(c.steps)
	c.mu.Unlock()

	var errs []error
	for _, s := range slices.Backward(steps) {
		start := time.Now()
		if err := s.run(ctx); err != nil {
			c.log.Error("shutdown step failed", "step", s.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		c.log.Debug("shutdown step done", "step", s.name, "duration", time.Since(start))
	}
	return errors.Join(errs...)
}

// Done is closed once every step has run.
func (c *Coordinator) Done() <-chan struct{} {
	return c.stopped
}
