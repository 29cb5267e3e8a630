// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package schedule

import (
	"context"
	"fmt"
	"time"
)

// TickPeriod is how often the scheduler checks the clock.
const TickPeriod = time.Second

// Target is one upload destination as far as cadence is concerned.
type Target struct {
	Name            string
	IntervalMinutes int
}

// Tick is the outcome of one scheduler step. Due is only ever non-empty on
// a sampling tick, and lists targets in configuration order.
type Tick struct {
	Now    time.Time
	Sample bool
	Due    []string
}

// Handler processes a sampling tick. A returned error stops Run.
type Handler func(ctx context.Context, tick Tick) error

// Scheduler drives the two cadences: a sample every 5 wall-clock seconds,
// and per-target uploads on minute boundaries. It is not safe for
// concurrent use; Run owns it.
type Scheduler struct {
	clock   Clock
	period  time.Duration
	targets []Target
	minutes *MinuteTracker

	lastSampled int64 // unix second of the last sample
	sampled     bool
}

// New validates the targets and starts minute tracking at clock.Now().
func New(clock Clock, targets []Target) (*Scheduler, error) {
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if t.Name == "" {
			return nil, fmt.Errorf("schedule: target with empty name")
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("schedule: duplicate target %q", t.Name)
		}
		seen[t.Name] = true
		if err := ValidateInterval(t.IntervalMinutes); err != nil {
			return nil, fmt.Errorf("schedule: target %q: %w", t.Name, err)
		}
	}

	return &Scheduler{
		clock:   clock,
		period:  TickPeriod,
		targets: append([]Target(nil), targets...),
		minutes: NewMinuteTracker(clock.Now()),
	}, nil
}

// Step evaluates both cadences at now.
func (s *Scheduler) Step(now time.Time) Tick {
	tick := Tick{Now: now}

	if !SampleDue(now) {
		return tick
	}
	sec := now.Unix()
	if s.sampled && sec == s.lastSampled {
		// two ticks landed in the same wall-clock second
		return tick
	}
	s.lastSampled = sec
	s.sampled = true
	tick.Sample = true

	minute, changed := s.minutes.Advance(now)
	if !changed {
		return tick
	}
	for _, t := range s.targets {
		if UploadDue(minute, t.IntervalMinutes) {
			tick.Due = append(tick.Due, t.Name)
		}
	}
	return tick
}

// Run steps once immediately and then on every tick until ctx is done, in
// which case it returns nil. Sampling ticks are passed to h; an error from h
// is returned as is.
func (s *Scheduler) Run(ctx context.Context, h Handler) error {
	ticker := s.clock.NewTicker(s.period)
	defer ticker.Stop()

	if err := s.handle(ctx, s.clock.Now(), h); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C():
			if err := s.handle(ctx, now, h); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) handle(ctx context.Context, now time.Time, h Handler) error {
	tick := s.Step(now)
	if !tick.Sample {
		return nil
	}
	return h(ctx, tick)
}
