// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

import (
	"time"

	"github.com/relabs-tech/weather_station/internal/imu"
	"github.com/relabs-tech/weather_station/internal/orientation"
)

// RawSample is everything read from the board in one sampling tick.
// It is built once and never modified.
type RawSample struct {
	TempFromHumidity float64 `json:"temp_from_humidity"` // °C
	TempFromPressure float64 `json:"temp_from_pressure"` // °C
	CPUTemp          float64 `json:"cpu_temp"`           // °C

	Humidity float64 `json:"humidity"` // %rH
	Pressure float64 `json:"pressure"` // hPa

	Compass    float64    `json:"compass"` // heading, degrees from north
	CompassRaw imu.Vector `json:"compass_raw"`

	Gyro    orientation.Pose `json:"gyro"`
	GyroRaw imu.Vector       `json:"gyro_raw"`

	Accel    orientation.Pose `json:"accel"`
	AccelRaw imu.Vector       `json:"accel_raw"`

	SampledAt time.Time `json:"sampled_at"`
}
