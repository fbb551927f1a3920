package indicator

import (
	"strings"
	"sync"

	"github.com/sweeney/thermal-monitor/internal/logic"
)

// Glyph is a 5×5 pattern, one byte per row, bit 4 = leftmost column.
type Glyph [5]uint8

var (
	GlyphOK          = Glyph{0b00001, 0b00010, 0b00100, 0b11000, 0b10000}
	GlyphExclamation = Glyph{0b00100, 0b00100, 0b00100, 0b00000, 0b00100}
	GlyphX           = Glyph{0b10001, 0b01010, 0b00100, 0b01010, 0b10001}
)

// GlyphFor returns the glyph for p. PatternNone has no glyph.
func GlyphFor(p logic.Pattern) (Glyph, bool) {
	switch p {
	case logic.PatternOK:
		return GlyphOK, true
	case logic.PatternExclamation:
		return GlyphExclamation, true
	case logic.PatternX:
		return GlyphX, true
	default:
		return Glyph{}, false
	}
}

// Lit reports whether the pixel at row, col is on.
func (g Glyph) Lit(row, col int) bool {
	if row < 0 || row >= 5 || col < 0 || col >= 5 {
		return false
	}
	return g[row]&(1<<(4-col)) != 0
}

// Rows renders g as five strings of '#' and '.'.
func (g Glyph) Rows() []string {
	rows := make([]string, 5)
	for r := range rows {
		var sb strings.Builder
		for c := 0; c < 5; c++ {
			if g.Lit(r, c) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		rows[r] = sb.String()
	}
	return rows
}

// Matrix draws glyphs on the pixel matrix.
type Matrix interface {
	Show(g Glyph, c logic.Color) error
	Clear() error
}

// VirtualMatrix keeps the matrix contents in memory. It is the matrix on
// boards without an addressable LED grid; the status page draws the same
// glyph from the reported pattern.
type VirtualMatrix struct {
	mu    sync.RWMutex
	glyph Glyph
	color logic.Color
}

// NewVirtualMatrix returns a cleared matrix.
func NewVirtualMatrix() *VirtualMatrix {
	return &VirtualMatrix{color: logic.ColorOff}
}

// Show replaces the contents with g drawn in c.
func (m *VirtualMatrix) Show(g Glyph, c logic.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.glyph, m.color = g, c
	return nil
}

// Clear switches every pixel off.
func (m *VirtualMatrix) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.glyph, m.color = Glyph{}, logic.ColorOff
	return nil
}

// Snapshot returns the current glyph and colour.
func (m *VirtualMatrix) Snapshot() (Glyph, logic.Color) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.glyph, m.color
}
