package sensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IIOAnalog reads a raw channel from the Linux industrial I/O subsystem, e.g.
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw on an ADS1015 hat.
type IIOAnalog struct {
	path  string
	shift uint // right shift to bring the converter down to 12 bits
}

// NewIIOAnalog opens path. bits is the converter resolution; readings are
// scaled to 0..FullScale.
func NewIIOAnalog(path string, bits int) (*IIOAnalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open iio channel: %w", err)
	}
	var shift uint
	if bits > 12 {
		shift = uint(bits - 12)
	}
	return &IIOAnalog{path: path, shift: shift}, nil
}

// ReadRaw returns the current channel value.
func (a *IIOAnalog) ReadRaw() (int, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return 0, fmt.Errorf("read iio channel: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse iio value: %w", err)
	}
	v >>= a.shift
	return max(0, min(v, FullScale)), nil
}
