// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"time"

	"github.com/relabs-tech/weather_station/internal/env"
)

// Sampler reads one complete RawSample from a board and a CPU temperature
// source. Any failed read fails the whole sample.
type Sampler struct {
	board Board
	cpu   CPUTempSource
}

// NewSampler returns a Sampler over b and cpu.
func NewSampler(b Board, cpu CPUTempSource) *Sampler {
	return &Sampler{board: b, cpu: cpu}
}

// Sample reads every sensor once and stamps the result with at.
func (s *Sampler) Sample(at time.Time) (env.RawSample, error) {
	var (
		out env.RawSample
		err error
	)
	out.SampledAt = at

	if out.TempFromHumidity, err = s.board.TemperatureFromHumidity(); err != nil {
		return env.RawSample{}, fmt.Errorf("temperature from humidity: %w", err)
	}
	if out.TempFromPressure, err = s.board.TemperatureFromPressure(); err != nil {
		return env.RawSample{}, fmt.Errorf("temperature from pressure: %w", err)
	}
	if out.CPUTemp, err = s.cpu.CPUTemp(); err != nil {
		return env.RawSample{}, err
	}
	if out.Humidity, err = s.board.Humidity(); err != nil {
		return env.RawSample{}, fmt.Errorf("humidity: %w", err)
	}
	if out.Pressure, err = s.board.Pressure(); err != nil {
		return env.RawSample{}, fmt.Errorf("pressure: %w", err)
	}
	if out.Compass, err = s.board.Compass(); err != nil {
		return env.RawSample{}, fmt.Errorf("compass: %w", err)
	}
	if out.CompassRaw, err = s.board.CompassRaw(); err != nil {
		return env.RawSample{}, fmt.Errorf("compass raw: %w", err)
	}
	if out.Gyro, err = s.board.Gyroscope(); err != nil {
		return env.RawSample{}, fmt.Errorf("gyroscope: %w", err)
	}
	if out.GyroRaw, err = s.board.GyroscopeRaw(); err != nil {
		return env.RawSample{}, fmt.Errorf("gyroscope raw: %w", err)
	}
	if out.Accel, err = s.board.Accelerometer(); err != nil {
		return env.RawSample{}, fmt.Errorf("accelerometer: %w", err)
	}
	if out.AccelRaw, err = s.board.AccelerometerRaw(); err != nil {
		return env.RawSample{}, fmt.Errorf("accelerometer raw: %w", err)
	}
	return out, nil
}
