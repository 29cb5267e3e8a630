// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package schedule

import (
	"errors"
	"fmt"
	"time"
)

const (
	// SampleEvery is the sampling cadence in wall-clock seconds.
	SampleEvery = 5

	MinIntervalMinutes = 1
	MaxIntervalMinutes = 60
)

// ErrIntervalRange is returned for upload intervals outside [1, 60] minutes.
var ErrIntervalRange = errors.New("upload interval must be between 1 and 60 minutes")

// ValidateInterval checks an upload interval in minutes.
func ValidateInterval(minutes int) error {
	if minutes < MinIntervalMinutes || minutes > MaxIntervalMinutes {
		return fmt.Errorf("%w, got %d", ErrIntervalRange, minutes)
	}
	return nil
}

// SampleDue reports whether t falls on a sampling second (0, 5, ..., 55).
// Wall-clock seconds are used as-is; drift is not corrected.
func SampleDue(t time.Time) bool {
	s := t.Second()
	return s == 0 || s%SampleEvery == 0
}

// UploadDue reports whether a target with the given interval uploads in
// minute. Intervals that don't divide 60 restart at the top of the hour, so
// 7 fires at 0, 7, ..., 56 and then 0 again.
func UploadDue(minute, intervalMinutes int) bool {
	return minute == 0 || minute%intervalMinutes == 0
}

// MinuteTracker detects wall-clock minute changes. It starts one minute
// behind the start time so the startup minute itself gets an upload check.
type MinuteTracker struct {
	last int
}

// NewMinuteTracker starts tracking at the minute before start, wrapping 0 to 59.
func NewMinuteTracker(start time.Time) *MinuteTracker {
	return &MinuteTracker{last: (start.Minute() + 59) % 60}
}

// Last returns the last minute seen.
func (m *MinuteTracker) Last() int { return m.last }

// Advance records now's minute and reports whether it differs from the
// previous one.
func (m *MinuteTracker) Advance(now time.Time) (minute int, changed bool) {
	minute = now.Minute()
	if minute == m.last {
		return minute, false
	}
	m.last = minute
	return minute, true
}
