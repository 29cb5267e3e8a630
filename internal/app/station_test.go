package app

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relabs-tech/weather_station/internal/display"
	"github.com/relabs-tech/weather_station/internal/env"
	"github.com/relabs-tech/weather_station/internal/gps"
	"github.com/relabs-tech/weather_station/internal/imu"
	"github.com/relabs-tech/weather_station/internal/orientation"
	"github.com/relabs-tech/weather_station/internal/schedule"
	"github.com/relabs-tech/weather_station/internal/thermal"
	"github.com/relabs-tech/weather_station/internal/upload"
)

type fakeClock struct {
	now time.Time
	ch  chan time.Time
}

func (c *fakeClock) Now() time.Time                          { return c.now }
func (c *fakeClock) NewTicker(time.Duration) schedule.Ticker { return fakeTicker{c.ch} }

type fakeTicker struct{ ch chan time.Time }

func (f fakeTicker) C() <-chan time.Time { return f.ch }
func (f fakeTicker) Stop()               {}

type fakeBoard struct {
	tHum, tPress float64
	rotation     int
	closed       atomic.Bool
}

func (b *fakeBoard) TemperatureFromHumidity() (float64, error) { return b.tHum, nil }
func (b *fakeBoard) TemperatureFromPressure() (float64, error) { return b.tPress, nil }
func (b *fakeBoard) Humidity() (float64, error)                { return 45, nil }
func (b *fakeBoard) Pressure() (float64, error)                { return 1013, nil }
func (b *fakeBoard) Compass() (float64, error)                 { return 90, nil }
func (b *fakeBoard) CompassRaw() (imu.Vector, error)           { return imu.Vector{Y: 20}, nil }
func (b *fakeBoard) Gyroscope() (orientation.Pose, error)      { return orientation.Pose{}, nil }
func (b *fakeBoard) GyroscopeRaw() (imu.Vector, error)         { return imu.Vector{}, nil }
func (b *fakeBoard) Accelerometer() (orientation.Pose, error)  { return orientation.Pose{}, nil }
func (b *fakeBoard) AccelerometerRaw() (imu.Vector, error)     { return imu.Vector{Z: 1}, nil }
func (b *fakeBoard) SetRotation(deg int) error                 { b.rotation = deg; return nil }
func (b *fakeBoard) Close() error                              { b.closed.Store(true); return nil }

type fakeCPU struct {
	v   float64
	err error
}

func (c fakeCPU) CPUTemp() (float64, error) { return c.v, c.err }

type fakeSink struct {
	name   string
	got    chan env.Reading
	closed atomic.Bool
}

func newFakeSink(name string) *fakeSink {
	return &fakeSink{name: name, got: make(chan env.Reading, 16)}
}

func (s *fakeSink) Name() string { return s.name }
func (s *fakeSink) Deliver(_ context.Context, r env.Reading) error {
	s.got <- r
	return nil
}
func (s *fakeSink) Close(context.Context) error { s.closed.Store(true); return nil }

type fakeDisplay struct {
	mu    sync.Mutex
	texts []string
}

func (d *fakeDisplay) Show(text string, _ float64, _ display.Colour) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts = append(d.texts, text)
	return nil
}

func (d *fakeDisplay) Close() error { return nil }

func (d *fakeDisplay) shown() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.texts...)
}

var base = time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)

type harness struct {
	clock   *fakeClock
	board   *fakeBoard
	sink    *fakeSink
	display *fakeDisplay
	station *Station
}

func newHarness(t *testing.T, cpu fakeCPU) *harness {
	t.Helper()
	h := &harness{
		clock:   &fakeClock{now: base, ch: make(chan time.Time)},
		board:   &fakeBoard{tHum: 20, tPress: 22},
		sink:    newFakeSink("wu"),
		display: &fakeDisplay{},
	}
	st, err := NewStation(Deps{
		DeviceID:      "pi-test",
		Board:         h.board,
		CPU:           cpu,
		Clock:         h.clock,
		Sinks:         []upload.Sink{h.sink},
		Targets:       []schedule.Target{{Name: "wu", IntervalMinutes: 1}},
		Display:       h.display,
		ScrollSpeed:   0.1,
		Rotation:      180,
		UploadTimeout: time.Second,
		ShutdownGrace: time.Second,
	})
	if err != nil {
		t.Fatalf("NewStation: %v", err)
	}
	h.station = st
	return h
}

func (h *harness) receive(t *testing.T) env.Reading {
	t.Helper()
	select {
	case r := <-h.sink.got:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no reading delivered")
		return env.Reading{}
	}
}

func TestStationSamplesAndUploads(t *testing.T) {
	h := newHarness(t, fakeCPU{v: 40})
	if h.board.rotation != 180 {
		t.Errorf("rotation = %d, want 180", h.board.rotation)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.station.Run(ctx) }()

	// startup minute is checked immediately
	r := h.receive(t)
	want := thermal.Compensate(20, 22, 40)
	if math.Abs(r.TemperatureC-want) > 1e-9 {
		t.Errorf("TemperatureC = %v, want %v", r.TemperatureC, want)
	}
	if r.Device != "pi-test" || r.UploadedAtUTC != "2026-10-14T13:00:00" {
		t.Errorf("reading = %+v", r)
	}
	if r.Location != nil {
		t.Errorf("Location = %+v, want nil without gps", r.Location)
	}

	h.clock.ch <- base.Add(5 * time.Second)  // sample, no upload
	h.clock.ch <- base.Add(60 * time.Second) // new minute
	r = h.receive(t)
	if r.UploadedAtUTC != "2026-10-14T13:01:00" {
		t.Errorf("second upload at %s", r.UploadedAtUTC)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop")
	}

	if got := h.display.shown(); len(got) != 3 || !strings.HasSuffix(got[0], "C") {
		t.Errorf("display = %q, want three temperature texts", got)
	}
	if !h.sink.closed.Load() || !h.board.closed.Load() {
		t.Error("sink and board must be closed on shutdown")
	}
	if _, ok := h.station.Status().Latest(); !ok {
		t.Error("status has no reading")
	}
	select {
	case r := <-h.sink.got:
		t.Errorf("unexpected extra upload %+v", r)
	default:
	}
}

func TestStationSampleErrorStopsRun(t *testing.T) {
	boom := errors.New("thermal zone unreadable")
	h := newHarness(t, fakeCPU{err: boom})

	err := h.station.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run = %v, want %v", err, boom)
	}
	if !h.sink.closed.Load() || !h.board.closed.Load() {
		t.Error("sink and board must be closed after a fatal sample error")
	}
	if len(h.display.shown()) != 0 {
		t.Error("nothing should be displayed for a failed sample")
	}
}

func TestStationAttachesGPSFix(t *testing.T) {
	h := newHarness(t, fakeCPU{v: 40})
	h.station.gps = gps.NewTracker()
	if err := h.station.gps.Update("$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	tick := schedule.Tick{Now: base, Sample: true, Due: []string{"wu"}}
	if err := h.station.handle(context.Background(), tick); err != nil {
		t.Fatalf("handle: %v", err)
	}
	r := h.receive(t)
	if r.Location == nil || math.Abs(r.Location.Latitude-48.1173) > 1e-4 {
		t.Fatalf("Location = %+v", r.Location)
	}
	h.station.shutdown()
}

func TestNewStationRejectsTargetWithoutSink(t *testing.T) {
	_, err := NewStation(Deps{
		Board:   &fakeBoard{},
		CPU:     fakeCPU{v: 40},
		Clock:   &fakeClock{now: base},
		Targets: []schedule.Target{{Name: "kafka", IntervalMinutes: 5}},
	})
	if !errors.Is(err, upload.ErrUnknownTarget) {
		t.Fatalf("err = %v, want ErrUnknownTarget", err)
	}
}

func TestNewStationRejectsBadInterval(t *testing.T) {
	_, err := NewStation(Deps{
		Board:   &fakeBoard{},
		CPU:     fakeCPU{v: 40},
		Clock:   &fakeClock{now: base},
		Sinks:   []upload.Sink{newFakeSink("wu")},
		Targets: []schedule.Target{{Name: "wu", IntervalMinutes: 0}},
	})
	if !errors.Is(err, schedule.ErrIntervalRange) {
		t.Fatalf("err = %v, want ErrIntervalRange", err)
	}
}

func TestNewStationRequiresBoard(t *testing.T) {
	if _, err := NewStation(Deps{CPU: fakeCPU{}, Clock: &fakeClock{}}); err == nil {
		t.Fatal("expected error without a board")
	}
}
