package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/weather_station/internal/env"
	"github.com/relabs-tech/weather_station/internal/metrics"
	"github.com/relabs-tech/weather_station/internal/upload"
)

func TestStatusReadingEndpoint(t *testing.T) {
	st := NewStatus()
	srv := httptest.NewServer(st.Handler(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/reading")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("before first sample: status %d", resp.StatusCode)
	}

	st.SetReading(env.Reading{TemperatureC: 21.5, Device: "pi"})
	resp, err = http.Get(srv.URL + "/api/reading")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got env.Reading
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TemperatureC != 21.5 || got.Device != "pi" {
		t.Errorf("reading = %+v", got)
	}
}

func TestStatusUploadsEndpoint(t *testing.T) {
	st := NewStatus()
	st.SetUpload(upload.Result{
		Target:    "wu",
		Status:    upload.StatusFailed,
		Err:       errors.New("status 401"),
		ReadingAt: base,
		Duration:  1500 * time.Millisecond,
	})

	rec := httptest.NewRecorder()
	st.Handler(nil).ServeHTTP(rec, httptest.NewRequest("GET", "/api/uploads", nil))
	var got map[string]UploadStatus
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := UploadStatus{
		Target:     "wu",
		Status:     "failed",
		Error:      "status 401",
		ReadingAt:  "2026-10-14T13:00:00",
		DurationMs: 1500,
	}
	if got["wu"] != want {
		t.Errorf("uploads[wu] = %+v, want %+v", got["wu"], want)
	}
}

func TestStatusWebsocketStreamsReadings(t *testing.T) {
	st := NewStatus()
	st.SetReading(env.Reading{TemperatureC: 20})
	srv := httptest.NewServer(st.Handler(nil))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var r env.Reading
	if err := conn.ReadJSON(&r); err != nil {
		t.Fatalf("read current: %v", err)
	}
	if r.TemperatureC != 20 {
		t.Errorf("current = %v", r.TemperatureC)
	}

	// the handler registers before sending the current reading
	st.SetReading(env.Reading{TemperatureC: 21})
	if err := conn.ReadJSON(&r); err != nil {
		t.Fatalf("read pushed: %v", err)
	}
	if r.TemperatureC != 21 {
		t.Errorf("pushed = %v", r.TemperatureC)
	}
}

func TestStatusServesMetrics(t *testing.T) {
	m := metrics.New()
	m.ObserveSample(20, 50, 1000, 45)

	rec := httptest.NewRecorder()
	NewStatus().Handler(m.Handler()).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "weather_samples_total 1") {
		t.Errorf("metrics body missing samples counter")
	}
}
