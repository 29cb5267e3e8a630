package sensors

import "periph.io/x/conn/v3"

// LPS25H pressure/temperature sensor.
const (
	LPS25HAddr = 0x5C

	lpsWhoAmI   = 0x0F
	lpsID       = 0xBD
	lpsCtrlReg1 = 0x20
	lpsPressXL  = 0x28
	lpsTempL    = 0x2B

	// power on, 25 Hz, block data update
	lpsCtrlOn = 0xC4
)

type lps25h struct {
	d regDev
}

func newLPS25H(c conn.Conn) (*lps25h, error) {
	p := &lps25h{d: regDev{name: "lps25h", c: c}}
	if err := p.d.expectID(lpsWhoAmI, lpsID); err != nil {
		return nil, err
	}
	if err := p.d.write(lpsCtrlReg1, lpsCtrlOn); err != nil {
		return nil, err
	}
	return p, nil
}

// pressure in hPa from the 24-bit two's complement output.
func (p *lps25h) pressure() (float64, error) {
	var raw uint32
	for i := byte(0); i < 3; i++ {
		b, err := p.d.read(lpsPressXL + i)
		if err != nil {
			return 0, err
		}
		raw |= uint32(b) << (8 * i)
	}
	v := int32(raw<<8) >> 8
	return float64(v) / 4096, nil
}

func (p *lps25h) temperature() (float64, error) {
	raw, err := p.d.readS16(lpsTempL)
	if err != nil {
		return 0, err
	}
	return 42.5 + float64(raw)/480, nil
}
