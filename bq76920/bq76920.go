// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bq76920

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/bq769x0/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

const (
	// DefaultAddress is the 7 bit I²C address of the BQ7692000/BQ7692003.
	DefaultAddress uint16 = 0x08

	// ccCfgInit must be written to CC_CFG after power up (datasheet 8.5.11).
	ccCfgInit byte = 0x19
)

// ErrCRC is returned when a read from a CRC enabled part fails its check.
var ErrCRC = errors.New("bq76920: invalid crc")

// Opts holds the configuration of the driver.
type Opts struct {
	// CRC must be set for the part numbers that append a CRC-8 to every I²C
	// transfer.
	CRC bool
}

// DefaultOpts is used when nil is passed to NewI2C.
var DefaultOpts = Opts{}

// Dev is a handle to a BQ76920.
//
// Dev is not safe for concurrent use.
type Dev struct {
	d    *i2c.Dev
	opts Opts
	cal  *Calibration
}

// NewI2C returns a Dev for the chip at addr on b. It initializes CC_CFG,
// which the datasheet requires before the protection features are used.
// Nothing else is configured.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}, opts: *opts}
	if err := d.WriteRegister(CCCfg, ccCfgInit); err != nil {
		return nil, err
	}
	return d, nil
}

// ReadRegister reads one register byte.
func (d *Dev) ReadRegister(reg Register) (byte, error) {
	if !d.opts.CRC {
		r := make([]byte, 1)
		if err := d.d.Tx([]byte{byte(reg)}, r); err != nil {
			return 0, err
		}
		return r[0], nil
	}
	r := make([]byte, 2)
	if err := d.d.Tx([]byte{byte(reg)}, r); err != nil {
		return 0, err
	}
	if common.CRC8([]byte{byte(d.d.Addr<<1) | 1, r[0]}) != r[1] {
		return 0, fmt.Errorf("%w reading %s", ErrCRC, reg)
	}
	return r[0], nil
}

// WriteRegister writes one register byte as a single [reg, value] transfer.
func (d *Dev) WriteRegister(reg Register, value byte) error {
	w := []byte{byte(reg), value}
	if d.opts.CRC {
		w = append(w, common.CRC8([]byte{byte(d.d.Addr << 1), byte(reg), value}))
	}
	return d.d.Tx(w, nil)
}

// ReadView reads reg and decodes it.
func (d *Dev) ReadView(reg Register) (View, error) {
	raw, err := d.ReadRegister(reg)
	if err != nil {
		return View{}, err
	}
	return Decode(reg, raw), nil
}

// WriteView writes the whole register of v without reading it first and
// returns the view written.
func (d *Dev) WriteView(v View) (View, error) {
	if err := d.WriteRegister(v.Register(), v.Encode()); err != nil {
		return View{}, err
	}
	return v, nil
}

// ModifyView reads reg, lets mutate change the decoded view and writes the
// result back. Nothing is written if mutate returns an error.
//
// The read and the write are two bus transactions; a write from another bus
// master in between is lost.
func (d *Dev) ModifyView(reg Register, mutate func(v *View) error) (View, error) {
	v, err := d.ReadView(reg)
	if err != nil {
		return View{}, err
	}
	if err := mutate(&v); err != nil {
		return View{}, err
	}
	return d.WriteView(v)
}

// setFlags is a ModifyView setting single bit fields of the same register.
func (d *Dev) setFlags(reg Register, on bool, fields ...Field) (View, error) {
	return d.ModifyView(reg, func(v *View) error {
		for _, f := range fields {
			if err := v.SetFlag(f, on); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetDischargeSwitch turns the discharge FET on or off. The other SYS_CTRL2
// bits are preserved.
func (d *Dev) SetDischargeSwitch(on bool) (View, error) {
	return d.setFlags(SysCtrl2, on, DischargeOn)
}

// SetChargeSwitch turns the charge FET on or off. The other SYS_CTRL2 bits
// are preserved.
func (d *Dev) SetChargeSwitch(on bool) (View, error) {
	return d.setFlags(SysCtrl2, on, ChargeOn)
}

// SetSwitches sets both FETs in a single read-modify-write.
func (d *Dev) SetSwitches(charge, discharge bool) (View, error) {
	return d.ModifyView(SysCtrl2, func(v *View) error {
		if err := v.SetFlag(ChargeOn, charge); err != nil {
			return err
		}
		return v.SetFlag(DischargeOn, discharge)
	})
}

// EnableADC turns on the voltage and temperature ADC.
func (d *Dev) EnableADC() (View, error) {
	return d.setFlags(SysCtrl1, true, ADCEnable)
}

// ReadStatus returns SYS_STAT.
func (d *Dev) ReadStatus() (View, error) {
	return d.ReadView(SysStat)
}

// ClearStatus clears the SYS_STAT flags set in s. The register is write 1 to
// clear so flags not set in s are left latched.
func (d *Dev) ClearStatus(s View) error {
	if s.layout == nil {
		return fmt.Errorf("%w: empty view", ErrFieldRegister)
	}
	if s.Register() != SysStat {
		return fmt.Errorf("%w: %s is not %s", ErrFieldRegister, s.Register(), SysStat)
	}
	return d.WriteRegister(SysStat, s.Encode())
}

// Halt opens both the charge and discharge FETs. Implements conn.Resource.
func (d *Dev) Halt() error {
	_, err := d.SetSwitches(false, false)
	return err
}

func (d *Dev) String() string {
	return fmt.Sprintf("bq76920: %s", d.d.String())
}

var _ conn.Resource = &Dev{}
