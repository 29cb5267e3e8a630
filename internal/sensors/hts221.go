package sensors

import "periph.io/x/conn/v3"

// HTS221 humidity/temperature sensor.
const (
	HTS221Addr = 0x5F

	htsWhoAmI   = 0x0F
	htsID       = 0xBC
	htsCtrlReg1 = 0x20
	htsHOut     = 0x28
	htsTOut     = 0x2A

	htsH0rHx2   = 0x30
	htsH1rHx2   = 0x31
	htsT0degCx8 = 0x32
	htsT1degCx8 = 0x33
	htsT1T0msb  = 0x35
	htsH0T0Out  = 0x36
	htsH1T0Out  = 0x3A
	htsT0Out    = 0x3C
	htsT1Out    = 0x3E

	// power on, block data update, 12.5 Hz
	htsCtrlOn = 0x87
)

type hts221 struct {
	d regDev

	h0, h1       float64
	h0Out, h1Out int16
	t0, t1       float64
	t0Out, t1Out int16
}

func newHTS221(c conn.Conn) (*hts221, error) {
	h := &hts221{d: regDev{name: "hts221", c: c}}
	if err := h.d.expectID(htsWhoAmI, htsID); err != nil {
		return nil, err
	}
	if err := h.d.write(htsCtrlReg1, htsCtrlOn); err != nil {
		return nil, err
	}
	if err := h.calibrate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *hts221) calibrate() error {
	var (
		b   [5]byte
		err error
	)
	for i, reg := range []byte{htsH0rHx2, htsH1rHx2, htsT0degCx8, htsT1degCx8, htsT1T0msb} {
		if b[i], err = h.d.read(reg); err != nil {
			return err
		}
	}
	h.h0 = float64(b[0]) / 2
	h.h1 = float64(b[1]) / 2
	msb := uint16(b[4])
	h.t0 = float64(uint16(b[2])|(msb&0x03)<<8) / 8
	h.t1 = float64(uint16(b[3])|(msb&0x0C)<<6) / 8

	for _, p := range []struct {
		reg byte
		dst *int16
	}{
		{htsH0T0Out, &h.h0Out},
		{htsH1T0Out, &h.h1Out},
		{htsT0Out, &h.t0Out},
		{htsT1Out, &h.t1Out},
	} {
		if *p.dst, err = h.d.readS16(p.reg); err != nil {
			return err
		}
	}
	return nil
}

func interpolate(raw, out0, out1 int16, v0, v1 float64) float64 {
	if out1 == out0 {
		return v0
	}
	return v0 + (float64(raw)-float64(out0))*(v1-v0)/(float64(out1)-float64(out0))
}

func (h *hts221) temperature() (float64, error) {
	raw, err := h.d.readS16(htsTOut)
	if err != nil {
		return 0, err
	}
	return interpolate(raw, h.t0Out, h.t1Out, h.t0, h.t1), nil
}

// humidity is clamped to the physical 0..100 %rH range.
func (h *hts221) humidity() (float64, error) {
	raw, err := h.d.readS16(htsHOut)
	if err != nil {
		return 0, err
	}
	v := interpolate(raw, h.h0Out, h.h1Out, h.h0, h.h1)
	return max(0, min(100, v)), nil
}
