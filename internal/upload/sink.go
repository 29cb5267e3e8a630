// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package upload delivers readings to the configured sinks without letting
// a slow or broken sink affect sampling or the other sinks.
package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/weather_station/internal/env"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 5 * time.Second

var (
	// ErrDropped means the target's previous attempt was still in flight.
	ErrDropped = errors.New("upload: previous attempt still in flight, reading dropped")
	// ErrClosed means the dispatcher is shutting down.
	ErrClosed = errors.New("upload: dispatcher closed")
	// ErrTimeout means the attempt exceeded its deadline.
	ErrTimeout = errors.New("upload: attempt timed out")
	// ErrUnknownTarget means no sink is registered under the name.
	ErrUnknownTarget = errors.New("upload: unknown target")
	// ErrGraceExpired means in-flight attempts were abandoned at shutdown.
	ErrGraceExpired = errors.New("upload: shutdown grace expired, in-flight attempts abandoned")
)

// Sink is one upload destination. Deliver must honour ctx; Close releases
// any connection the sink holds.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r env.Reading) error
	Close(ctx context.Context) error
}

// Status is the outcome of one upload attempt.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusDropped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusDropped:
		return "dropped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result describes one attempt for one target.
type Result struct {
	Target    string
	Status    Status
	Err       error
	ReadingAt time.Time
	Started   time.Time
	Duration  time.Duration
}

// OK reports whether the reading was delivered.
func (r Result) OK() bool { return r.Status == StatusOK }

// Attempt delivers r to s synchronously. It returns no later than timeout
// even if the sink ignores its context, and turns a panicking sink into a
// failed Result.
func Attempt(ctx context.Context, s Sink, r env.Reading, timeout time.Duration) Result {
	return attempt(ctx, s, r, timeout, func() {})
}

func attempt(ctx context.Context, s Sink, r env.Reading, timeout time.Duration, release func()) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := Result{Target: s.Name(), ReadingAt: r.At, Started: time.Now()}

	done := make(chan error, 1)
	go func() {
		err := safeDeliver(ctx, s, r)
		release()
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, ctx.Err())
	}

	res.Duration = time.Since(res.Started)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
	}
	return res
}

func safeDeliver(ctx context.Context, s Sink, r env.Reading) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("upload: %s panicked: %v", s.Name(), p)
		}
	}()
	err = s.Deliver(ctx, r)
	if err != nil && ctx.Err() != nil && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
