// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"github.com/relabs-tech/weather_station/internal/imu"
	"github.com/relabs-tech/weather_station/internal/orientation"
)

// Board is the synchronous accessor set the station samples every tick.
// Implementations are used from a single goroutine.
type Board interface {
	TemperatureFromHumidity() (float64, error) // °C
	TemperatureFromPressure() (float64, error) // °C
	Humidity() (float64, error)                // %rH
	Pressure() (float64, error)                // hPa

	Compass() (float64, error) // heading, degrees
	CompassRaw() (imu.Vector, error)
	Gyroscope() (orientation.Pose, error)
	GyroscopeRaw() (imu.Vector, error)
	Accelerometer() (orientation.Pose, error)
	AccelerometerRaw() (imu.Vector, error)

	// SetRotation fixes the display orientation. Called once at startup.
	SetRotation(deg int) error
	Close() error
}

// ValidRotation checks a display rotation in degrees.
func ValidRotation(deg int) error {
	switch deg {
	case 0, 90, 180, 270:
		return nil
	}
	return fmt.Errorf("rotation must be 0, 90, 180 or 270, got %d", deg)
}
