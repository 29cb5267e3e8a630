// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/weather_station/internal/imu"
	"github.com/relabs-tech/weather_station/internal/orientation"
)

// SenseHat drives the environmental and inertial chips of a Raspberry Pi
// Sense HAT over I2C.
type SenseHat struct {
	closer   func() error
	hum      *hts221
	press    *lps25h
	imu      *lsm9ds1
	rotation int

	now      func() time.Time
	gyroPose orientation.Pose
	lastGyro time.Time
}

// OpenSenseHat initializes periph and probes every chip on the named bus
// ("" selects the first available bus).
func OpenSenseHat(busName string) (*SenseHat, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", busName, err)
	}
	s, err := newSenseHat(bus)
	if err != nil {
		bus.Close()
		return nil, err
	}
	s.closer = bus.Close
	log.Printf("sensehat: initialized on bus %s", bus)
	return s, nil
}

func newSenseHat(bus i2c.Bus) (*SenseHat, error) {
	dev := func(addr uint16) *i2c.Dev { return &i2c.Dev{Bus: bus, Addr: addr} }

	hum, err := newHTS221(dev(HTS221Addr))
	if err != nil {
		return nil, err
	}
	press, err := newLPS25H(dev(LPS25HAddr))
	if err != nil {
		return nil, err
	}
	motion, err := newLSM9DS1(dev(LSM9DS1AGAddr), dev(LSM9DS1MagAddr))
	if err != nil {
		return nil, err
	}
	return &SenseHat{hum: hum, press: press, imu: motion, now: time.Now}, nil
}

func (s *SenseHat) TemperatureFromHumidity() (float64, error) { return s.hum.temperature() }
func (s *SenseHat) TemperatureFromPressure() (float64, error) { return s.press.temperature() }
func (s *SenseHat) Humidity() (float64, error)                { return s.hum.humidity() }
func (s *SenseHat) Pressure() (float64, error)                { return s.press.pressure() }

func (s *SenseHat) CompassRaw() (imu.Vector, error)       { return s.imu.magnetometer() }
func (s *SenseHat) GyroscopeRaw() (imu.Vector, error)     { return s.imu.gyro() }
func (s *SenseHat) AccelerometerRaw() (imu.Vector, error) { return s.imu.accel() }

// Compass returns the magnetic heading in degrees.
func (s *SenseHat) Compass() (float64, error) {
	m, err := s.imu.magnetometer()
	if err != nil {
		return 0, err
	}
	return orientation.Heading(m), nil
}

// Accelerometer returns roll and pitch derived from gravity. Yaw is zero.
func (s *SenseHat) Accelerometer() (orientation.Pose, error) {
	a, err := s.imu.accel()
	if err != nil {
		return orientation.Pose{}, err
	}
	return orientation.ComputePoseFromAccel(a), nil
}

// Gyroscope integrates angular rate since the previous call. The first call
// returns the zero pose.
func (s *SenseHat) Gyroscope() (orientation.Pose, error) {
	g, err := s.imu.gyro()
	if err != nil {
		return orientation.Pose{}, err
	}
	now := s.now()
	if !s.lastGyro.IsZero() {
		s.gyroPose = orientation.IntegrateGyro(s.gyroPose, g, now.Sub(s.lastGyro).Seconds())
	}
	s.lastGyro = now
	return s.gyroPose, nil
}

// SetRotation records the LED matrix rotation.
func (s *SenseHat) SetRotation(deg int) error {
	if err := ValidRotation(deg); err != nil {
		return err
	}
	s.rotation = deg
	return nil
}

// Rotation returns the last rotation set.
func (s *SenseHat) Rotation() int { return s.rotation }

func (s *SenseHat) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
