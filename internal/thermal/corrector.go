// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package thermal turns the board's two temperature estimates into a single
// ambient temperature, compensating for heat from the CPU below the sensors.
package thermal

// cpuFactor weights how much of the CPU-to-board difference bleeds into the
// board sensors.
const cpuFactor = 1.5

// window is the number of corrected values averaged by the Smoother.
const window = 3

// Smoother is a fixed-window moving average over the last three values.
// The zero value is ready to use. Not safe for concurrent use.
type Smoother struct {
	t      [window]float64 // most recent first
	seeded bool
}

// Smooth records x and returns the mean of the last three values.
// The first call fills every slot with x, so it returns x unchanged.
func (s *Smoother) Smooth(x float64) float64 {
	if !s.seeded {
		for i := range s.t {
			s.t[i] = x
		}
		s.seeded = true
		// mean of [x x x]; returned directly so float rounding can't move it
		return x
	}
	s.t[2] = s.t[1]
	s.t[1] = s.t[0]
	s.t[0] = x
	return (s.t[0] + s.t[1] + s.t[2]) / window
}

// Compensate returns the CPU-compensated temperature without smoothing.
func Compensate(tHumidity, tPressure, tCPU float64) float64 {
	t := (tHumidity + tPressure) / 2
	return t - (tCPU-t)/cpuFactor
}

// Corrector owns the smoothing state for the process. The station loop is
// its only writer.
type Corrector struct {
	smooth Smoother
}

// NewCorrector returns a Corrector with empty smoothing state.
func NewCorrector() *Corrector {
	return &Corrector{}
}

// Correct compensates the two board readings for CPU heat and smooths the
// result across the last three samples.
func (c *Corrector) Correct(tHumidity, tPressure, tCPU float64) float64 {
	return c.smooth.Smooth(Compensate(tHumidity, tPressure, tCPU))
}
