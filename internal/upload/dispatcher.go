// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/weather_station/internal/env"
)

// Reporter receives every Result. It is called from worker goroutines and
// from Dispatch, so it must be safe for concurrent use.
type Reporter func(Result)

// Options configures a Dispatcher.
type Options struct {
	Timeout time.Duration // per attempt; DefaultTimeout if zero
	Report  Reporter
}

type worker struct {
	sink Sink
	jobs chan env.Reading // capacity 1, only filled while busy is held
	busy atomic.Bool
}

// Dispatcher runs one worker per sink. A target has at most one attempt in
// flight; a reading that arrives while one is running is dropped and
// reported as StatusDropped.
type Dispatcher struct {
	timeout time.Duration
	report  Reporter

	order   []string
	workers map[string]*worker

	ctx    context.Context
	cancel context.CancelFunc

	workersWG  sync.WaitGroup
	inflightWG sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts a worker for each sink. Sink names must be unique.
func NewDispatcher(sinks []Sink, opts Options) (*Dispatcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Report == nil {
		opts.Report = func(Result) {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		timeout: opts.Timeout,
		report:  opts.Report,
		workers: make(map[string]*worker, len(sinks)),
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, s := range sinks {
		name := s.Name()
		if _, dup := d.workers[name]; dup {
			cancel()
			return nil, fmt.Errorf("upload: duplicate sink %q", name)
		}
		d.workers[name] = &worker{sink: s, jobs: make(chan env.Reading, 1)}
		d.order = append(d.order, name)
	}

	for _, name := range d.order {
		w := d.workers[name]
		d.workersWG.Add(1)
		go d.run(w)
	}
	return d, nil
}

// Targets returns the sink names in registration order.
func (d *Dispatcher) Targets() []string {
	return append([]string(nil), d.order...)
}

// Dispatch hands r to each named target and returns immediately.
func (d *Dispatcher) Dispatch(r env.Reading, targets []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, name := range targets {
		if d.closed {
			d.report(Result{Target: name, Status: StatusFailed, Err: ErrClosed, ReadingAt: r.At})
			continue
		}
		w, ok := d.workers[name]
		if !ok {
			d.report(Result{Target: name, Status: StatusFailed, Err: fmt.Errorf("%w %q", ErrUnknownTarget, name), ReadingAt: r.At})
			continue
		}
		if !w.busy.CompareAndSwap(false, true) {
			d.report(Result{Target: name, Status: StatusDropped, Err: ErrDropped, ReadingAt: r.At})
			continue
		}
		d.inflightWG.Add(1)
		w.jobs <- r
	}
}

func (d *Dispatcher) run(w *worker) {
	defer d.workersWG.Done()
	for r := range w.jobs {
		res := attempt(d.ctx, w.sink, r, d.timeout, func() {
			// the target stays busy until the sink call really returns,
			// even when the attempt already timed out
			w.busy.Store(false)
			d.inflightWG.Done()
		})
		d.report(res)
	}
}

// Close stops accepting readings and waits up to grace for in-flight
// attempts. After grace the remaining attempts are cancelled and
// ErrGraceExpired is returned. Sinks are closed either way.
func (d *Dispatcher) Close(grace time.Duration) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, w := range d.workers {
		close(w.jobs)
	}
	d.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		d.workersWG.Wait()
		d.inflightWG.Wait()
		close(finished)
	}()

	var errs []error
	select {
	case <-finished:
	case <-time.After(grace):
		errs = append(errs, ErrGraceExpired)
	}
	d.cancel()

	closeCtx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	for _, name := range d.order {
		if err := d.workers[name].sink.Close(closeCtx); err != nil {
			errs = append(errs, fmt.Errorf("upload: close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
