// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// panel is the part of *ssd1306.Dev the OLED uses.
type panel interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// OLED renders text on a monochrome SSD1306. The panel has no colour, so
// the colour argument is ignored. Text wider than the panel scrolls from
// right to left, one pixel column per scroll step.
type OLED struct {
	dev    panel
	closer func() error

	mu     sync.Mutex
	text   string
	step   time.Duration
	offset int
	stop   chan struct{}
	done   chan struct{}
}

// NewOLED opens the panel on busName. A rotation of 180 flips the image.
func NewOLED(busName string, rotation int) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}
	opts := ssd1306.DefaultOpts
	opts.Rotated = rotation == 180
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: ssd1306 initialized on %s", bus)
	o := newOLED(dev)
	o.closer = bus.Close
	return o, nil
}

func newOLED(dev panel) *OLED {
	o := &OLED{dev: dev, stop: make(chan struct{}), done: make(chan struct{})}
	go o.scrollLoop()
	return o
}

// Show draws text immediately and arranges for it to scroll if needed.
func (o *OLED) Show(text string, scrollSpeed float64, _ Colour) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.text = text
	o.offset = 0
	o.step = time.Duration(scrollSpeed * float64(time.Second))
	return o.drawLocked()
}

// drawLocked renders the current frame. Caller holds mu.
func (o *OLED) drawLocked() error {
	img := render(o.dev.Bounds(), o.text, o.offset)
	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}

// scrollLoop advances wide text one column per step.
func (o *OLED) scrollLoop() {
	defer close(o.done)
	const poll = 50 * time.Millisecond
	last := time.Now()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-o.stop:
			return
		case now := <-ticker.C:
			o.mu.Lock()
			width := textWidth(o.text)
			if o.step > 0 && width > o.dev.Bounds().Dx() && now.Sub(last) >= o.step {
				last = now
				o.offset = (o.offset + 1) % (width + o.dev.Bounds().Dx())
				if err := o.drawLocked(); err != nil {
					log.Printf("display: draw error: %v", err)
				}
			}
			o.mu.Unlock()
		}
	}
}

// Close stops scrolling, blanks the panel and releases the bus.
func (o *OLED) Close() error {
	close(o.stop)
	<-o.done
	err := o.dev.Halt()
	if o.closer != nil {
		if cerr := o.closer(); err == nil {
			err = cerr
		}
	}
	return err
}

func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

// render draws text vertically centred. Text that fits is centred
// horizontally; wider text starts at the right edge and moves left by offset.
func render(bounds image.Rectangle, text string, offset int) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(bounds)
	face := basicfont.Face7x13

	w := textWidth(text)
	x := (bounds.Dx() - w) / 2
	if w > bounds.Dx() {
		x = bounds.Dx() - offset
	}
	y := (bounds.Dy() + face.Ascent - face.Descent) / 2

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
	return img
}
