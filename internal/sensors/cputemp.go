package sensors

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultCPUTempPath is the Raspberry Pi SoC thermal zone.
const DefaultCPUTempPath = "/sys/class/thermal/thermal_zone0/temp"

// CPUTempSource returns the current CPU die temperature.
type CPUTempSource interface {
	CPUTemp() (float64, error)
}

// CPUTemp reads the die temperature from a sysfs thermal zone.
// Unlike a monitor loop it never falls back to a placeholder value: an
// unreadable or implausible value is an error.
type CPUTemp struct {
	Path string
}

// CPUTemp returns °C. The file holds millidegrees on current kernels and
// plain degrees on some older ones.
func (c CPUTemp) CPUTemp() (float64, error) {
	path := c.Path
	if path == "" {
		path = DefaultCPUTempPath
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("cpu temp: %w", err)
	}
	s := strings.TrimSpace(string(b))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cpu temp: parse %q: %w", s, err)
	}
	if v > 1000 {
		v /= 1000
	}
	// Assume <= 0 is invalid.
	if v <= 0 {
		return 0, fmt.Errorf("cpu temp: implausible value %v", v)
	}
	return v, nil
}
