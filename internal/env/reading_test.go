package env

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/weather_station/internal/gps"
	"github.com/relabs-tech/weather_station/internal/imu"
)

func TestNewReadingCopiesSample(t *testing.T) {
	s := RawSample{
		Humidity:   41.5,
		Pressure:   1013.2,
		Compass:    270,
		CompassRaw: imu.Vector{X: 1, Y: 2, Z: 3},
		AccelRaw:   imu.Vector{Z: 1},
	}
	now := time.Date(2026, 10, 14, 9, 30, 0, 123456789, time.UTC)

	r := NewReading(s, 21.25, "pi-station", nil, now)

	if r.TemperatureC != 21.25 || r.Humidity != 41.5 || r.Pressure != 1013.2 {
		t.Fatalf("unexpected values: %+v", r)
	}
	if r.CompassRaw != s.CompassRaw || r.AccelerometerRaw != s.AccelRaw {
		t.Errorf("vectors not copied: %+v", r)
	}
	if r.UploadedAtUTC != "2026-10-14T09:30:00" {
		t.Errorf("UploadedAtUTC = %q", r.UploadedAtUTC)
	}
	if !r.At.Equal(now.Truncate(time.Second)) {
		t.Errorf("At = %v", r.At)
	}
}

func TestReadingJSONFieldNames(t *testing.T) {
	r := NewReading(RawSample{}, 20, "dev", nil, time.Now())
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := string(b)
	for _, key := range []string{`"temperature"`, `"compassRaw"`, `"gyroscopeRaw"`, `"accelerometerRaw"`, `"uploadDtInUtc"`, `"uploadDtInLocal"`, `"device"`} {
		if !strings.Contains(out, key) {
			t.Errorf("missing %s in %s", key, out)
		}
	}
	if strings.Contains(out, `"location"`) {
		t.Errorf("location should be omitted without a fix: %s", out)
	}

	r.Location = &gps.Fix{Latitude: 40.4, Longitude: -3.7, Validity: "A"}
	b, _ = json.Marshal(r)
	if !strings.Contains(string(b), `"location"`) {
		t.Errorf("location missing with a fix: %s", b)
	}
}

func TestUnitConversions(t *testing.T) {
	if got := CToF(100); got != 212 {
		t.Errorf("CToF(100) = %v", got)
	}
	if got := CToF(-40); got != -40 {
		t.Errorf("CToF(-40) = %v", got)
	}
	if got := HPaToInHg(1013.25); math.Abs(got-29.921) > 0.001 {
		t.Errorf("HPaToInHg(1013.25) = %v", got)
	}
}
