package sensors

import (
	"fmt"

	"periph.io/x/conn/v3"
)

// regDev is a byte-wide register view over an I2C device.
type regDev struct {
	name string
	c    conn.Conn
}

func (d regDev) read(reg byte) (byte, error) {
	var b [1]byte
	if err := d.c.Tx([]byte{reg}, b[:]); err != nil {
		return 0, fmt.Errorf("%s: read 0x%02X: %w", d.name, reg, err)
	}
	return b[0], nil
}

func (d regDev) write(reg, val byte) error {
	if err := d.c.Tx([]byte{reg, val}, nil); err != nil {
		return fmt.Errorf("%s: write 0x%02X: %w", d.name, reg, err)
	}
	return nil
}

// readU16 reads a little-endian pair starting at lo.
func (d regDev) readU16(lo byte) (uint16, error) {
	l, err := d.read(lo)
	if err != nil {
		return 0, err
	}
	h, err := d.read(lo + 1)
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

func (d regDev) readS16(lo byte) (int16, error) {
	v, err := d.readU16(lo)
	return int16(v), err
}

// readXYZ reads three consecutive signed little-endian axes.
func (d regDev) readXYZ(lo byte) (x, y, z int16, err error) {
	if x, err = d.readS16(lo); err != nil {
		return
	}
	if y, err = d.readS16(lo + 2); err != nil {
		return
	}
	z, err = d.readS16(lo + 4)
	return
}

func (d regDev) expectID(reg, want byte) error {
	got, err := d.read(reg)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: unexpected WHO_AM_I 0x%02X, want 0x%02X", d.name, got, want)
	}
	return nil
}
