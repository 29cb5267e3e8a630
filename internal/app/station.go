// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/weather_station/internal/display"
	"github.com/relabs-tech/weather_station/internal/env"
	"github.com/relabs-tech/weather_station/internal/gps"
	"github.com/relabs-tech/weather_station/internal/metrics"
	"github.com/relabs-tech/weather_station/internal/schedule"
	"github.com/relabs-tech/weather_station/internal/sensors"
	"github.com/relabs-tech/weather_station/internal/thermal"
	"github.com/relabs-tech/weather_station/internal/upload"
)

// Deps is everything a Station runs on. Board, CPU and Clock are required;
// the rest fall back to harmless defaults.
type Deps struct {
	DeviceID string
	Board    sensors.Board
	CPU      sensors.CPUTempSource
	Clock    schedule.Clock

	Sinks   []upload.Sink
	Targets []schedule.Target

	Display     display.Display
	ScrollSpeed float64
	Rotation    int

	UploadTimeout time.Duration
	ShutdownGrace time.Duration

	Metrics *metrics.Metrics

	WebServerAddr string

	GPSSerialPort string
	GPSBaudRate   int
}

// Station samples the board on the cadence, keeps the corrected
// temperature, shows it, and hands readings to the uploaders.
type Station struct {
	deviceID    string
	board       sensors.Board
	sampler     *sensors.Sampler
	corrector   *thermal.Corrector
	sched       *schedule.Scheduler
	uploads     *upload.Dispatcher
	display     display.Display
	scrollSpeed float64
	grace       time.Duration
	metrics     *metrics.Metrics
	status      *Status
	gps         *gps.Tracker

	webAddr string
	gpsPort string
	gpsBaud int
}

// NewStation wires d into a Station. The board's display rotation is set
// here, once.
func NewStation(d Deps) (*Station, error) {
	if d.Board == nil || d.CPU == nil || d.Clock == nil {
		return nil, errors.New("station: board, cpu temperature source and clock are required")
	}
	if d.Display == nil {
		d.Display = display.None{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	if err := d.Board.SetRotation(d.Rotation); err != nil {
		return nil, fmt.Errorf("station: %w", err)
	}

	sched, err := schedule.New(d.Clock, d.Targets)
	if err != nil {
		return nil, fmt.Errorf("station: %w", err)
	}

	s := &Station{
		deviceID:    d.DeviceID,
		board:       d.Board,
		sampler:     sensors.NewSampler(d.Board, d.CPU),
		corrector:   thermal.NewCorrector(),
		sched:       sched,
		display:     d.Display,
		scrollSpeed: d.ScrollSpeed,
		grace:       d.ShutdownGrace,
		metrics:     d.Metrics,
		status:      NewStatus(),
		webAddr:     d.WebServerAddr,
		gpsPort:     d.GPSSerialPort,
		gpsBaud:     d.GPSBaudRate,
	}
	if d.GPSSerialPort != "" {
		s.gps = gps.NewTracker()
	}

	s.uploads, err = upload.NewDispatcher(d.Sinks, upload.Options{
		Timeout: d.UploadTimeout,
		Report:  s.report,
	})
	if err != nil {
		return nil, fmt.Errorf("station: %w", err)
	}

	// every scheduled target needs a sink
	have := make(map[string]bool)
	for _, name := range s.uploads.Targets() {
		have[name] = true
	}
	for _, t := range d.Targets {
		if !have[t.Name] {
			s.uploads.Close(0)
			return nil, fmt.Errorf("station: target %q has no sink: %w", t.Name, upload.ErrUnknownTarget)
		}
	}
	return s, nil
}

// Status exposes what the status server shows.
func (s *Station) Status() *Status { return s.status }

// report logs each upload outcome and feeds metrics and the status page.
func (s *Station) report(res upload.Result) {
	switch res.Status {
	case upload.StatusOK:
		log.Printf("upload: %s ok in %s", res.Target, res.Duration.Round(time.Millisecond))
	case upload.StatusDropped:
		log.Printf("upload: %s skipped: %v", res.Target, res.Err)
	default:
		log.Printf("upload: %s failed: %v", res.Target, res.Err)
	}
	s.metrics.ObserveUpload(res)
	s.status.SetUpload(res)
}

// handle runs on every sampling tick.
func (s *Station) handle(ctx context.Context, tick schedule.Tick) error {
	raw, err := s.sampler.Sample(tick.Now)
	if err != nil {
		return fmt.Errorf("station: sample: %w", err)
	}

	tempC := s.corrector.Correct(raw.TempFromHumidity, raw.TempFromPressure, raw.CPUTemp)
	log.Printf("Temp: %.1fF (%.1fC), Pressure: %.1f hPa, Humidity: %.1f%%",
		env.CToF(tempC), tempC, raw.Pressure, raw.Humidity)

	if err := s.display.Show(fmt.Sprintf("%.1fC", tempC), s.scrollSpeed, display.Green); err != nil {
		log.Printf("station: display error: %v", err)
	}
	s.metrics.ObserveSample(tempC, raw.Humidity, raw.Pressure, raw.CPUTemp)

	reading := env.NewReading(raw, tempC, s.deviceID, s.location(), tick.Now)
	s.status.SetReading(reading)

	if len(tick.Due) > 0 {
		log.Printf("station: minute %02d, uploading to %s", tick.Now.Minute(), strings.Join(tick.Due, ", "))
		s.uploads.Dispatch(reading, tick.Due)
	}
	return nil
}

func (s *Station) location() *gps.Fix {
	if s.gps == nil {
		return nil
	}
	fix, ok := s.gps.Latest()
	if !ok {
		return nil
	}
	return &fix
}

// Run drives the loop until ctx is done or a sample fails, then drains the
// uploaders and releases the hardware. A cancelled ctx returns nil; a failed
// sample returns its error.
func (s *Station) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if s.gps != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.gps.Run(ctx, s.gpsPort, s.gpsBaud); err != nil && ctx.Err() == nil {
				log.Printf("gps: %v", err)
			}
		}()
	}
	if s.webAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ServeStatus(ctx, s.webAddr, s.status.Handler(s.metrics.Handler())); err != nil {
				log.Printf("web: %v", err)
			}
		}()
	}

	log.Printf("station: %s sampling every %ds", s.deviceID, schedule.SampleEvery)
	err := s.sched.Run(ctx, s.handle)

	cancel()
	wg.Wait()
	s.shutdown()
	return err
}

// shutdown problems are logged; they never change the exit status.
func (s *Station) shutdown() {
	if err := s.uploads.Close(s.grace); err != nil {
		log.Printf("upload: %v", err)
	}
	if err := s.display.Close(); err != nil {
		log.Printf("station: display close: %v", err)
	}
	if err := s.board.Close(); err != nil {
		log.Printf("station: board close: %v", err)
	}
}
