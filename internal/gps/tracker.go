// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// ErrNotRMC is returned by Update for sentences that carry no position.
var ErrNotRMC = errors.New("gps: not an RMC sentence")

// Tracker keeps the latest valid fix from an NMEA stream. Latest is safe to
// call from any goroutine.
type Tracker struct {
	mu   sync.RWMutex
	fix  Fix
	have bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Latest returns the last valid fix, if any.
func (t *Tracker) Latest() (Fix, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fix, t.have
}

// Update parses one NMEA line. Only RMC sentences change the fix; a void
// RMC clears it so stale positions are not reported.
func (t *Tracker) Update(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return ErrNotRMC
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return fmt.Errorf("gps: parse: %w", err)
	}
	if sentence.DataType() != nmea.TypeRMC {
		return ErrNotRMC
	}
	m := sentence.(nmea.RMC)

	f := Fix{
		Time:       m.Time.String(),
		Date:       m.Date.String(),
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		SpeedKnots: m.Speed,
		CourseDeg:  m.Course,
		Validity:   string(m.Validity),
	}

	t.mu.Lock()
	t.fix = f
	t.have = f.Valid()
	t.mu.Unlock()
	return nil
}

// Consume reads NMEA lines from r until it fails or ctx is done.
func (t *Tracker) Consume(ctx context.Context, r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := reader.ReadString('\n')
		if line != "" {
			// noisy receivers emit partial sentences; those are skipped
			_ = t.Update(line)
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("gps: read: %w", err)
		}
	}
}

// Run opens the serial port and feeds the tracker until ctx is done.
func (t *Tracker) Run(ctx context.Context, portName string, baud int) error {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return fmt.Errorf("gps: open %s: %w", portName, err)
	}
	log.Printf("gps: serial port opened on %s at %d baud", portName, baud)

	// closing the port unblocks the pending read
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	return t.Consume(ctx, port)
}
