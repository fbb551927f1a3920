// Package display renders the monitor screens onto a small monochrome panel.
// Panels speak a begin / draw text / flush protocol; layout is computed here
// and never depends on the panel implementation.
package display

import (
	"fmt"
	"sync"
)

// Panel geometry.
const (
	Width      = 128
	Height     = 64
	GlyphWidth = 7 // advance of the 7×13 canvas face
)

// Panel is a text-drawing frame buffer.
type Panel interface {
	// Begin clears the frame.
	Begin() error
	// DrawText draws s with its top-left corner at x, y.
	DrawText(x, y int, s string) error
	// Flush sends the frame to the device.
	Flush() error
}

// Line is one positioned string.
type Line struct {
	X    int
	Y    int
	Text string
}

// Display serialises whole frames onto a Panel so that concurrent drawers
// never interleave partial frames.
type Display struct {
	mu    sync.Mutex
	panel Panel
}

// New wraps panel.
func New(panel Panel) *Display {
	return &Display{panel: panel}
}

// Show draws lines as one complete frame.
func (d *Display) Show(lines []Line) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.panel.Begin(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	for _, l := range lines {
		if err := d.panel.DrawText(l.X, l.Y, l.Text); err != nil {
			return fmt.Errorf("draw %q: %w", l.Text, err)
		}
	}
	if err := d.panel.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}

// FramePanel keeps frames in memory. It is used when no panel is attached
// and by the status page to show what is on screen.
type FramePanel struct {
	mu      sync.RWMutex
	pending []Line
	last    []Line
	flushes int
}

// NewFramePanel returns an empty FramePanel.
func NewFramePanel() *FramePanel {
	return &FramePanel{}
}

func (p *FramePanel) Begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = p.pending[:0]
	return nil
}

func (p *FramePanel) DrawText(x, y int, s string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, Line{X: x, Y: y, Text: s})
	return nil
}

func (p *FramePanel) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = append([]Line(nil), p.pending...)
	p.flushes++
	return nil
}

// Frame returns the last flushed frame.
func (p *FramePanel) Frame() []Line {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Line(nil), p.last...)
}

// Texts returns the strings of the last flushed frame, top to bottom.
func (p *FramePanel) Texts() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.last))
	for i, l := range p.last {
		out[i] = l.Text
	}
	return out
}

// flushCount returns how many frames have been flushed.
func (p *FramePanel) flushCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.flushes
}

// Tee fans a frame out to several panels, e.g. hardware plus a FramePanel
// for the status page. The first error stops the fan-out.
type Tee []Panel

func (t Tee) Begin() error {
	for _, p := range t {
		if err := p.Begin(); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) DrawText(x, y int, s string) error {
	for _, p := range t {
		if err := p.DrawText(x, y, s); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Flush() error {
	for _, p := range t {
		if err := p.Flush(); err != nil {
			return err
		}
	}
	return nil
}
