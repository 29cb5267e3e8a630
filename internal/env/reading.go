// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

import (
	"time"

	"github.com/relabs-tech/weather_station/internal/gps"
	"github.com/relabs-tech/weather_station/internal/imu"
	"github.com/relabs-tech/weather_station/internal/orientation"
)

// TimestampLayout is ISO-8601 to the second, without zone.
const TimestampLayout = "2006-01-02T15:04:05"

// Reading is the upload payload. Sinks receive it by value and may encode
// it however their backend expects.
type Reading struct {
	TemperatureC float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Pressure     float64 `json:"pressure"`

	Compass          float64          `json:"compass"`
	CompassRaw       imu.Vector       `json:"compassRaw"`
	Gyroscope        orientation.Pose `json:"gyroscope"`
	GyroscopeRaw     imu.Vector       `json:"gyroscopeRaw"`
	Accelerometer    orientation.Pose `json:"accelerometer"`
	AccelerometerRaw imu.Vector       `json:"accelerometerRaw"`

	Location *gps.Fix `json:"location,omitempty"`

	Device          string `json:"device"`
	UploadedAtUTC   string `json:"uploadDtInUtc"`
	UploadedAtLocal string `json:"uploadDtInLocal"`

	// At is the upload-due instant the timestamps were rendered from.
	At time.Time `json:"-"`
}

// NewReading builds the payload for one upload cycle from the latest sample
// and the corrected temperature. loc may be nil.
func NewReading(s RawSample, tempC float64, device string, loc *gps.Fix, now time.Time) Reading {
	now = now.Truncate(time.Second)
	return Reading{
		TemperatureC:     tempC,
		Humidity:         s.Humidity,
		Pressure:         s.Pressure,
		Compass:          s.Compass,
		CompassRaw:       s.CompassRaw,
		Gyroscope:        s.Gyro,
		GyroscopeRaw:     s.GyroRaw,
		Accelerometer:    s.Accel,
		AccelerometerRaw: s.AccelRaw,
		Location:         loc,
		Device:           device,
		UploadedAtUTC:    now.UTC().Format(TimestampLayout),
		UploadedAtLocal:  now.Local().Format(TimestampLayout),
		At:               now,
	}
}

// TemperatureF returns the reading's temperature in Fahrenheit.
func (r Reading) TemperatureF() float64 {
	return CToF(r.TemperatureC)
}

// PressureInHg returns the reading's pressure in inches of mercury.
func (r Reading) PressureInHg() float64 {
	return HPaToInHg(r.Pressure)
}
