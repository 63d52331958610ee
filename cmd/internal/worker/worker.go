// Package worker runs periodic background tasks owned by the app lifecycle.
//
// Sample usage:
//
//	w := worker.New(log, "session-sweep", 15*time.Minute, sweep)
//	w.Start(ctx)
//	defer w.Stop()
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// Observer is notified after every run. Optional.
type Observer func(name string, err error, d time.Duration)

// Worker invokes a Task immediately on Start and then every interval.
// A failing or panicking run is logged; the next run still happens.
type Worker struct {
	log      *slog.Logger
	name     string
	interval time.Duration
	task     Task
	observe  Observer

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Worker.
type Option func(*Worker)

// WithObserver registers a callback invoked after each run.
func WithObserver(o Observer) Option {
	return func(w *Worker) { w.observe = o }
}

// New constructs a Worker. interval must be positive.
func New(log *slog.Logger, name string, interval time.Duration, task Task, opts ...Option) (*Worker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("worker %q: interval must be positive", name)
	}
	if task == nil {
		return nil, fmt.Errorf("worker %q: task is nil", name)
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Worker{log: log, name: name, interval: interval, task: task}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start launches the loop. Calling Start on a running worker is a no-op.
// The loop also stops when ctx is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	w.log.Info("worker.start", "worker", w.name, "interval", w.interval.String())
	go w.loop(ctx, w.done)
}

// Stop cancels the loop and waits for an in-flight run to return.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
	w.log.Info("worker.stopped", "worker", w.name)
}

func (w *Worker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			w.runOnce(ctx)
			timer.Reset(w.interval)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	start := time.Now()
	var err error

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("panic: %v", rec)
			}
		}()
		err = w.task(ctx)
	}()

	d := time.Since(start)
	if err != nil {
		w.log.Error("worker.run.fail", "worker", w.name, "err", err, "duration_ms", d.Milliseconds())
	} else {
		w.log.Debug("worker.run.ok", "worker", w.name, "duration_ms", d.Milliseconds())
	}
	if w.observe != nil {
		w.observe(w.name, err, d)
	}
}
