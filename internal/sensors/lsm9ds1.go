package sensors

import (
	"math"

	"periph.io/x/conn/v3"

	"github.com/relabs-tech/weather_station/internal/imu"
)

// LSM9DS1 accelerometer/gyroscope and magnetometer. The two halves answer on
// separate addresses.
const (
	LSM9DS1AGAddr  = 0x6A
	LSM9DS1MagAddr = 0x1C

	lsmWhoAmI   = 0x0F
	lsmAGID     = 0x68
	lsmMagID    = 0x3D
	lsmCtrl1G   = 0x10
	lsmOutXG    = 0x18
	lsmCtrl6XL  = 0x20
	lsmOutXXL   = 0x28
	lsmCtrl1M   = 0x20
	lsmCtrl2M   = 0x21
	lsmCtrl3M   = 0x22
	lsmCtrl4M   = 0x23
	lsmOutXM    = 0x28
	lsmGyroOn   = 0x60 // 119 Hz, 245 dps
	lsmAccelOn  = 0x60 // 119 Hz, ±2 g
	lsmMagXYUHP = 0x70 // ultra-high performance XY, 10 Hz
	lsmMag4G    = 0x00
	lsmMagCont  = 0x00
	lsmMagZUHP  = 0x0C

	accelScale = 0.061e-3                // g/LSB
	gyroScale  = 8.75e-3 * math.Pi / 180 // rad/s per LSB
	magScale   = 0.014                   // µT/LSB
)

type lsm9ds1 struct {
	ag  regDev
	mag regDev
}

func newLSM9DS1(ag, mag conn.Conn) (*lsm9ds1, error) {
	l := &lsm9ds1{
		ag:  regDev{name: "lsm9ds1", c: ag},
		mag: regDev{name: "lsm9ds1-mag", c: mag},
	}
	if err := l.ag.expectID(lsmWhoAmI, lsmAGID); err != nil {
		return nil, err
	}
	if err := l.mag.expectID(lsmWhoAmI, lsmMagID); err != nil {
		return nil, err
	}
	for _, w := range []struct {
		d       regDev
		reg, on byte
	}{
		{l.ag, lsmCtrl1G, lsmGyroOn},
		{l.ag, lsmCtrl6XL, lsmAccelOn},
		{l.mag, lsmCtrl1M, lsmMagXYUHP},
		{l.mag, lsmCtrl2M, lsmMag4G},
		{l.mag, lsmCtrl3M, lsmMagCont},
		{l.mag, lsmCtrl4M, lsmMagZUHP},
	} {
		if err := w.d.write(w.reg, w.on); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func scaled(d regDev, reg byte, scale float64) (imu.Vector, error) {
	x, y, z, err := d.readXYZ(reg)
	if err != nil {
		return imu.Vector{}, err
	}
	return imu.Vector{X: float64(x) * scale, Y: float64(y) * scale, Z: float64(z) * scale}, nil
}

// accel in g.
func (l *lsm9ds1) accel() (imu.Vector, error) { return scaled(l.ag, lsmOutXXL, accelScale) }

// gyro in rad/s.
func (l *lsm9ds1) gyro() (imu.Vector, error) { return scaled(l.ag, lsmOutXG, gyroScale) }

// magnetometer in µT.
func (l *lsm9ds1) magnetometer() (imu.Vector, error) { return scaled(l.mag, lsmOutXM, magScale) }
