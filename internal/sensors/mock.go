// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/weather_station/internal/imu"
	"github.com/relabs-tech/weather_station/internal/orientation"
)

// MockBoard generates smooth, slowly changing values for running the
// station without a Sense HAT.
type MockBoard struct {
	start    time.Time
	now      func() time.Time
	Rotation int
}

// NewMockBoard creates a mock board driven by the wall clock.
func NewMockBoard() *MockBoard {
	return &MockBoard{start: time.Now(), now: time.Now}
}

func (m *MockBoard) elapsed() float64 {
	return m.now().Sub(m.start).Seconds()
}

// hourly swing of a couple of degrees around 24 °C, with the pressure-side
// sensor reading slightly warmer as on the real board
func (m *MockBoard) TemperatureFromHumidity() (float64, error) {
	return 24 + 2*math.Sin(m.elapsed()/600), nil
}

func (m *MockBoard) TemperatureFromPressure() (float64, error) {
	return 24.6 + 2*math.Sin(m.elapsed()/600), nil
}

func (m *MockBoard) Humidity() (float64, error) {
	return 45 + 5*math.Cos(m.elapsed()/900), nil
}

func (m *MockBoard) Pressure() (float64, error) {
	return 1013.25 + 3*math.Sin(m.elapsed()/3600), nil
}

func (m *MockBoard) Compass() (float64, error) {
	return orientation.Heading(m.mag()), nil
}

func (m *MockBoard) CompassRaw() (imu.Vector, error) {
	return m.mag(), nil
}

func (m *MockBoard) mag() imu.Vector {
	a := m.elapsed() / 60
	return imu.Vector{X: 20 * math.Cos(a), Y: 20 * math.Sin(a), Z: -40}
}

func (m *MockBoard) Gyroscope() (orientation.Pose, error) {
	e := m.elapsed()
	return orientation.Pose{
		Roll:  2 * math.Sin(e),
		Pitch: 1.5 * math.Cos(e*0.7),
		Yaw:   math.Mod(e*3, 360),
	}, nil
}

func (m *MockBoard) GyroscopeRaw() (imu.Vector, error) {
	return imu.Vector{X: 0.001, Y: -0.002, Z: 0.0005}, nil
}

func (m *MockBoard) Accelerometer() (orientation.Pose, error) {
	a, _ := m.AccelerometerRaw()
	return orientation.ComputePoseFromAccel(a), nil
}

func (m *MockBoard) AccelerometerRaw() (imu.Vector, error) {
	e := m.elapsed()
	return imu.Vector{X: 0.01 * math.Sin(e), Y: 0.01 * math.Cos(e), Z: 1}, nil
}

func (m *MockBoard) SetRotation(deg int) error {
	if err := ValidRotation(deg); err != nil {
		return err
	}
	m.Rotation = deg
	return nil
}

func (m *MockBoard) Close() error { return nil }
