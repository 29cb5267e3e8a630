package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/relabs-tech/weather_station/internal/env"
	"github.com/relabs-tech/weather_station/internal/gps"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestFormatReading(t *testing.T) {
	r := env.Reading{
		TemperatureC:    20,
		Pressure:        1013.25,
		Humidity:        45.5,
		Compass:         90,
		Device:          "pi",
		UploadedAtLocal: "2026-10-14T15:00:00",
	}
	got := FormatReading(r)
	for _, want := range []string{"[2026-10-14T15:00:00] pi", "T= 20.0C ( 68.0F)", "P= 1013.2 hPa", "H= 45.5%"} {
		if !strings.Contains(got, want) {
			t.Errorf("line %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "lat=") {
		t.Errorf("line %q has a location without a fix", got)
	}

	r.Location = &gps.Fix{Latitude: 48.1173, Longitude: 11.516667, Validity: "A"}
	if got := FormatReading(r); !strings.Contains(got, "lat=48.117300 lon=11.516667") {
		t.Errorf("line %q missing location", got)
	}
}

func TestWatchHandler(t *testing.T) {
	var buf bytes.Buffer
	h := watchHandler(&buf)

	h(nil, fakeMessage{topic: "weather/readings", payload: []byte(`{"temperature":21.5,"device":"pi"}`)})
	h(nil, fakeMessage{topic: "weather/readings", payload: []byte(`not json`)})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("printed %d lines, want 1: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "T= 21.5C") {
		t.Errorf("line = %q", lines[0])
	}
}
