//go:build !linux || tinygo

package display

import "errors"

var errUnsupported = errors.New("display: /dev/i2c not supported on this platform (requires Linux)")

// LinuxI2C is not available on this platform.
type LinuxI2C struct{}

// OpenI2C returns an error on this platform.
func OpenI2C(dev string) (*LinuxI2C, error) {
	return nil, errUnsupported
}

func (b *LinuxI2C) Tx(addr uint16, w, r []byte) error { return errUnsupported }
func (b *LinuxI2C) Close() error                      { return nil }
