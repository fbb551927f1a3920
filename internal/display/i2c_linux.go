//go:build linux && !tinygo

package display

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
	"tinygo.org/x/drivers"
)

// i2cSlave is the I2C_SLAVE ioctl from <linux/i2c-dev.h>.
const i2cSlave = 0x0703

// LinuxI2C implements drivers.I2C on a /dev/i2c-N character device.
type LinuxI2C struct {
	mu   sync.Mutex
	fd   int
	addr uint16
}

var _ drivers.I2C = (*LinuxI2C)(nil)

// OpenI2C opens the bus device, e.g. "/dev/i2c-1".
func OpenI2C(dev string) (*LinuxI2C, error) {
	fd, err := unix.Open(dev, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dev, err)
	}
	return &LinuxI2C{fd: fd}, nil
}

// Tx writes w then reads len(r) bytes from the device at addr.
func (b *LinuxI2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if addr != b.addr {
		if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("select i2c address 0x%02x: %w", addr, err)
		}
		b.addr = addr
	}
	if len(w) > 0 {
		if _, err := unix.Write(b.fd, w); err != nil {
			return fmt.Errorf("i2c write: %w", err)
		}
	}
	if len(r) > 0 {
		if _, err := unix.Read(b.fd, r); err != nil {
			return fmt.Errorf("i2c read: %w", err)
		}
	}
	return nil
}

// Close releases the bus device.
func (b *LinuxI2C) Close() error {
	return unix.Close(b.fd)
}
