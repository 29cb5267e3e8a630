package display

import (
	"bytes"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestColourHex(t *testing.T) {
	if got := Green.Hex(); got != "#00FF00" {
		t.Errorf("Green.Hex() = %q", got)
	}
	if got := (Colour{R: 0x12, G: 0xAB, B: 0x05}).Hex(); got != "#12AB05" {
		t.Errorf("Hex() = %q", got)
	}
}

func TestConsoleShow(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	if err := c.Show("21.3C", 0.1, Green); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := c.Show("21.4C", 0.1, Green); err != nil {
		t.Fatalf("Show: %v", err)
	}
	// not a terminal, so no escape sequences
	if got := buf.String(); got != "21.3C\n21.4C\n" {
		t.Errorf("output = %q", got)
	}
}

type fakePanel struct {
	mu     sync.Mutex
	frames []image.Image
	halted bool
	err    error
}

func (p *fakePanel) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (p *fakePanel) Draw(_ image.Rectangle, src image.Image, _ image.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, src)
	return p.err
}

func (p *fakePanel) Halt() error { p.halted = true; return nil }

func (p *fakePanel) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func litPixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.At(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestRenderCentresShortText(t *testing.T) {
	img := render(image.Rect(0, 0, 128, 64), "21.3C", 0)
	if litPixels(img) == 0 {
		t.Fatal("nothing drawn")
	}
	// 5 glyphs of 7 px centred in 128 leaves the outer columns dark
	for y := 0; y < 64; y++ {
		if img.At(0, y) == image1bit.On || img.At(127, y) == image1bit.On {
			t.Fatalf("pixel lit at the edge, row %d", y)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	if n := litPixels(render(image.Rect(0, 0, 128, 64), "", 0)); n != 0 {
		t.Errorf("empty text lit %d pixels", n)
	}
}

func TestOLEDShowDrawsOnce(t *testing.T) {
	p := &fakePanel{}
	o := newOLED(p)
	if err := o.Show("21.3C", 0.01, Green); err != nil {
		t.Fatalf("Show: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	// fits on the panel, so the scroll loop leaves it alone
	if n := p.count(); n != 1 {
		t.Errorf("frames = %d, want 1", n)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.halted {
		t.Error("panel not halted on Close")
	}
}

func TestOLEDScrollsWideText(t *testing.T) {
	p := &fakePanel{}
	o := newOLED(p)
	defer o.Close()
	if err := o.Show("Temperature is 21.3 degrees Celsius", 0.001, Green); err != nil {
		t.Fatalf("Show: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for p.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := p.count(); n < 3 {
		t.Fatalf("frames = %d, want scrolling to redraw", n)
	}
}

func TestOLEDShowReturnsDrawError(t *testing.T) {
	boom := errors.New("i2c nack")
	o := newOLED(&fakePanel{err: boom})
	defer o.Close()
	if err := o.Show("x", 0.1, Green); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestNone(t *testing.T) {
	var d Display = None{}
	if err := d.Show("x", 0.1, Green); err != nil {
		t.Fatal(err)
	}
}
