package orientation

import (
	"math"
	"testing"

	"github.com/relabs-tech/weather_station/internal/imu"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputePoseFromAccel(t *testing.T) {
	tests := []struct {
		name        string
		a           imu.Vector
		roll, pitch float64
	}{
		{"level", imu.Vector{Z: 1}, 0, 0},
		{"rolled 90", imu.Vector{Y: 1}, 90, 0},
		{"nose down", imu.Vector{X: 1}, 0, -90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputePoseFromAccel(tt.a)
			if !near(p.Roll, tt.roll) || !near(p.Pitch, tt.pitch) || p.Yaw != 0 {
				t.Errorf("got %+v, want roll=%v pitch=%v", p, tt.roll, tt.pitch)
			}
		})
	}
}

func TestIntegrateGyroWraps(t *testing.T) {
	p := IntegrateGyro(Pose{Yaw: 170}, imu.Vector{Z: 20 / radToDeg}, 1)
	if !near(p.Yaw, -170) {
		t.Errorf("Yaw = %v, want -170", p.Yaw)
	}
	if same := IntegrateGyro(p, imu.Vector{X: 1}, 0); same != p {
		t.Errorf("dt=0 should not move the pose: %+v", same)
	}
}

func TestHeading(t *testing.T) {
	tests := []struct {
		m    imu.Vector
		want float64
	}{
		{imu.Vector{X: 1}, 0},
		{imu.Vector{Y: 1}, 90},
		{imu.Vector{X: -1}, 180},
		{imu.Vector{Y: -1}, 270},
		{imu.Vector{}, 0},
	}
	for _, tt := range tests {
		if got := Heading(tt.m); !near(got, tt.want) {
			t.Errorf("Heading(%+v) = %v, want %v", tt.m, got, tt.want)
		}
	}
}
