// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display shows the current temperature on whatever output the
// station has: the terminal, an SSD1306 OLED, or nothing.
package display

import "fmt"

// Colour is an RGB text colour.
type Colour struct {
	R, G, B uint8
}

// Green is the colour used for the temperature readout.
var Green = Colour{G: 255}

// Hex returns the colour as #RRGGBB.
func (c Colour) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Display renders a short message. scrollSpeed is the delay in seconds
// between scroll steps for outputs too narrow to show text at once.
type Display interface {
	Show(text string, scrollSpeed float64, c Colour) error
	Close() error
}

// None discards everything.
type None struct{}

func (None) Show(string, float64, Colour) error { return nil }
func (None) Close() error                       { return nil }
