package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console prints each message on its own line in the requested colour.
// Colour is dropped automatically when w is not a terminal. The scroll
// speed is ignored.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
}

// NewConsole writes to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, renderer: lipgloss.NewRenderer(w)}
}

func (c *Console) Show(text string, _ float64, col Colour) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	style := c.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(col.Hex()))
	_, err := fmt.Fprintln(c.w, style.Render(text))
	return err
}

func (c *Console) Close() error { return nil }
