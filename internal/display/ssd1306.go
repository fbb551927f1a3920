package display

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// SSD1306 control bytes and commands. The init sequence is the one the
// controller datasheet gives for a 128×64 panel on the internal charge pump.
const (
	ssdControlCommand = 0x00
	ssdControlData    = 0x40

	ssdDisplayOff       = 0xAE
	ssdDisplayOn        = 0xAF
	ssdClockDiv         = 0xD5
	ssdMultiplex        = 0xA8
	ssdDisplayOffset    = 0xD3
	ssdStartLine        = 0x40
	ssdChargePump       = 0x8D
	ssdMemoryMode       = 0x20
	ssdSegRemap         = 0xA0
	ssdComScanDec       = 0xC8
	ssdComPins          = 0xDA
	ssdContrast         = 0x81
	ssdPrecharge        = 0xD9
	ssdVcomDetect       = 0xDB
	ssdResume           = 0xA4
	ssdNormal           = 0xA6
	ssdDeactivateScroll = 0x2E
	ssdColumnAddr       = 0x21
	ssdPageAddr         = 0x22
)

// pages is the number of 8-pixel rows in controller memory.
const pages = Height / 8

var ssdInit = []byte{
	ssdDisplayOff,
	ssdClockDiv, 0x80,
	ssdMultiplex, Height - 1,
	ssdDisplayOffset, 0x00,
	ssdStartLine | 0x00,
	ssdChargePump, 0x14,
	ssdMemoryMode, 0x00, // horizontal addressing
	ssdSegRemap | 0x01,
	ssdComScanDec,
	ssdComPins, 0x12,
	ssdContrast, 0xCF,
	ssdPrecharge, 0xF1,
	ssdVcomDetect, 0x40,
	ssdResume,
	ssdNormal,
	ssdDeactivateScroll,
	ssdDisplayOn,
}

// SSD1306Panel draws on a 128×64 SSD1306 OLED over I2C.
type SSD1306Panel struct {
	*Canvas

	bus  drivers.I2C
	addr uint16
	buf  []byte // control byte + one bit per pixel, page-major
}

// NewSSD1306Panel initialises the controller at addr on bus.
func NewSSD1306Panel(bus drivers.I2C, addr uint16) (*SSD1306Panel, error) {
	p := &SSD1306Panel{
		Canvas: NewCanvas(),
		bus:    bus,
		addr:   addr,
		buf:    make([]byte, 1+Width*pages),
	}
	for _, c := range ssdInit {
		if err := p.command(c); err != nil {
			return nil, fmt.Errorf("ssd1306 init at 0x%02x: %w", addr, err)
		}
	}
	return p, nil
}

func (p *SSD1306Panel) command(c byte) error {
	return p.bus.Tx(p.addr, []byte{ssdControlCommand, c}, nil)
}

// Flush packs the canvas into controller pages and sends the whole frame.
func (p *SSD1306Panel) Flush() error {
	fb := p.buf[1:]
	clear(fb)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if p.Lit(x, y) {
				fb[x+(y/8)*Width] |= 1 << (y % 8)
			}
		}
	}

	for _, c := range []byte{ssdColumnAddr, 0, Width - 1, ssdPageAddr, 0, pages - 1} {
		if err := p.command(c); err != nil {
			return fmt.Errorf("ssd1306 address: %w", err)
		}
	}
	p.buf[0] = ssdControlData
	if err := p.bus.Tx(p.addr, p.buf, nil); err != nil {
		return fmt.Errorf("ssd1306 display: %w", err)
	}
	return nil
}
