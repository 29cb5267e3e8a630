package orientation

import (
	"math"

	"github.com/relabs-tech/weather_station/internal/imu"
)

const radToDeg = 180.0 / math.Pi

// Pose is the canonical representation of orientation for the station,
// in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is always 0; the accelerometer cannot observe it.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(a imu.Vector) Pose {
	rollRad := math.Atan2(a.Y, a.Z)
	pitchRad := math.Atan2(-a.X, math.Sqrt(a.Y*a.Y+a.Z*a.Z))

	return Pose{
		Roll:  rollRad * radToDeg,
		Pitch: pitchRad * radToDeg,
		Yaw:   0,
	}
}

// IntegrateGyro advances prev by the angular rates g (rad/s) over dt seconds.
// Angles are wrapped to (-180, 180].
func IntegrateGyro(prev Pose, g imu.Vector, dt float64) Pose {
	if dt <= 0 {
		return prev
	}
	return Pose{
		Roll:  wrap180(prev.Roll + g.X*radToDeg*dt),
		Pitch: wrap180(prev.Pitch + g.Y*radToDeg*dt),
		Yaw:   wrap180(prev.Yaw + g.Z*radToDeg*dt),
	}
}

// Heading returns the compass heading in degrees [0, 360) from a level
// magnetometer reading.
func Heading(m imu.Vector) float64 {
	if m.X == 0 && m.Y == 0 {
		return 0
	}
	h := math.Atan2(m.Y, m.X) * radToDeg
	if h < 0 {
		h += 360
	}
	return h
}

func wrap180(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
