package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/relabs-tech/weather_station/internal/upload"
)

func TestObserveSample(t *testing.T) {
	m := New()
	m.ObserveSample(21.5, 40, 1012, 55)
	m.ObserveSample(21.7, 41, 1013, 56)

	if got := testutil.ToFloat64(m.samplesTotal); got != 2 {
		t.Errorf("samples_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.temperature); got != 21.7 {
		t.Errorf("temperature = %v, want 21.7", got)
	}
	if got := testutil.ToFloat64(m.cpuTemperature); got != 56 {
		t.Errorf("cpu temperature = %v, want 56", got)
	}
}

func TestObserveUpload(t *testing.T) {
	m := New()
	m.ObserveUpload(upload.Result{Target: "wu", Status: upload.StatusOK, Duration: 200 * time.Millisecond})
	m.ObserveUpload(upload.Result{Target: "wu", Status: upload.StatusFailed, Err: errors.New("401"), Duration: time.Second})
	m.ObserveUpload(upload.Result{Target: "mongodb", Status: upload.StatusDropped, Err: upload.ErrDropped})

	if got := testutil.ToFloat64(m.uploadsTotal.WithLabelValues("wu", "ok")); got != 1 {
		t.Errorf("wu ok = %v", got)
	}
	if got := testutil.ToFloat64(m.uploadsTotal.WithLabelValues("wu", "failed")); got != 1 {
		t.Errorf("wu failed = %v", got)
	}
	if got := testutil.ToFloat64(m.uploadsTotal.WithLabelValues("mongodb", "dropped")); got != 1 {
		t.Errorf("mongodb dropped = %v", got)
	}
	// only wu was timed
	if got := testutil.CollectAndCount(m.uploadDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSample(20, 50, 1000, 45)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"weather_samples_total 1", "weather_temperature_celsius 20", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
