// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bq76920

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Factory trim layout, datasheet section 8.5.12: ADCGAIN<4:3> are bits 3:2 of
// ADCGAIN1 and ADCGAIN<2:0> are bits 7:5 of ADCGAIN2. The trimmed value is
// added to a 365 µV/LSB base.
const (
	gainBase   = 365
	gain1Mask  = 0b00001100
	gain1Shift = 1
	gain2Mask  = 0b11100000
	gain2Shift = 5
)

// Pack voltage scaling, datasheet section 8.3.1.1.4:
// V(BAT) = 4 x GAIN x ADC(cell) + (#cells x OFFSET), with OFFSET in mV
// applied for the three cells of the BQ76920 pack.
const (
	packGainFactor   = 4
	packOffsetFactor = 3000
)

// Trip registers hold bits 11:4 of the 14 bit comparator code (datasheet
// 8.5.9). The other bits are fixed: UV is 01 + bits 11:4 + 0000 and OV is
// 10 + bits 11:4 + 1000.
const (
	tripShift   = 4
	tripMask    = 0xff
	uvTripFixed = 0x1000
	ovTripFixed = 0x2008
)

// ErrThresholdRange is returned for a trip threshold below the ADC offset,
// which has no encoding.
var ErrThresholdRange = errors.New("bq76920: threshold below adc offset")

// Calibration is the factory trimmed ADC gain and offset.
type Calibration struct {
	// Gain in µV per ADC count, including the 365 µV base.
	Gain uint16
	// Offset in mV.
	Offset int8
}

// CalibrationError is returned when the trim registers could not be read.
// Operations that depend on calibration never proceed without it.
type CalibrationError struct {
	Register Register
	Err      error
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("bq76920: failed to load calibration from %s: %v", e.Register, e.Err)
}

func (e *CalibrationError) Unwrap() error {
	return e.Err
}

// decodeCalibration converts the ADCOFFSET, ADCGAIN1 and ADCGAIN2 raw bytes.
func decodeCalibration(offset, gain1, gain2 byte) Calibration {
	trim := (gain1&gain1Mask)<<gain1Shift | (gain2&gain2Mask)>>gain2Shift
	return Calibration{
		Gain:   gainBase + uint16(trim),
		Offset: int8(offset),
	}
}

// Calibration returns the ADC calibration, reading the trim registers on the
// first call and returning the cached value afterwards.
func (d *Dev) Calibration() (Calibration, error) {
	if d.cal != nil {
		return *d.cal, nil
	}
	var raw [3]byte
	for i, reg := range []Register{ADCOffset, ADCGain1, ADCGain2} {
		b, err := d.ReadRegister(reg)
		if err != nil {
			return Calibration{}, &CalibrationError{Register: reg, Err: err}
		}
		raw[i] = b
	}
	c := decodeCalibration(raw[0], raw[1], raw[2])
	d.cal = &c
	return c, nil
}

// InvalidateCalibration drops the cached calibration. Call it after the chip
// has been reset; the next voltage operation reloads the trims.
func (d *Dev) InvalidateCalibration() {
	d.cal = nil
}

// PackVoltageMillivolts returns the calibrated battery pack voltage.
func (d *Dev) PackVoltageMillivolts() (int32, error) {
	hi, err := d.ReadRegister(BatHi)
	if err != nil {
		return 0, err
	}
	lo, err := d.ReadRegister(BatLo)
	if err != nil {
		return 0, err
	}
	c, err := d.Calibration()
	if err != nil {
		return 0, err
	}
	count := int64(uint16(hi)<<8 | uint16(lo))
	uV := packGainFactor*int64(c.Gain)*count + packOffsetFactor*int64(c.Offset)
	return int32(uV / 1000), nil
}

// PackVoltage is PackVoltageMillivolts as a physic.ElectricPotential.
func (d *Dev) PackVoltage() (physic.ElectricPotential, error) {
	mV, err := d.PackVoltageMillivolts()
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(mV) * physic.MilliVolt, nil
}

// tripCode converts a threshold into the 8 bit trip register value. Codes
// beyond 12 bits wrap, as only bits 11:4 are kept.
func tripCode(mV int32, c Calibration) (uint8, error) {
	num := int64(mV) - int64(c.Offset)
	if num < 0 {
		return 0, fmt.Errorf("%w: %d mV, offset %d mV", ErrThresholdRange, mV, c.Offset)
	}
	full := num * 1000 / int64(c.Gain)
	return uint8(full>>tripShift) & tripMask, nil
}

// tripMillivolts is the threshold the chip applies for a trip register code.
// fixed holds the comparator bits the register does not store.
func tripMillivolts(code uint8, fixed int64, c Calibration) int32 {
	full := fixed | int64(code)<<tripShift
	return int32(full*int64(c.Gain)/1000 + int64(c.Offset))
}

func (d *Dev) setTrip(f Field, mV int32) (int32, error) {
	c, err := d.Calibration()
	if err != nil {
		return 0, err
	}
	code, err := tripCode(mV, c)
	if err != nil {
		return 0, err
	}
	if _, err := d.ModifyView(f.Register(), func(v *View) error {
		return v.Set(f, code)
	}); err != nil {
		return 0, err
	}
	return mV, nil
}

func (d *Dev) readTrip(f Field, fixed int64) (int32, error) {
	c, err := d.Calibration()
	if err != nil {
		return 0, err
	}
	v, err := d.ReadView(f.Register())
	if err != nil {
		return 0, err
	}
	return tripMillivolts(v.Get(f), fixed, c), nil
}

// SetUnderVoltageTripMillivolts programs the cell under voltage threshold and
// returns mV as requested. The register only holds a quantized value; use
// UnderVoltageTripMillivolts to read back the threshold in effect.
func (d *Dev) SetUnderVoltageTripMillivolts(mV int32) (int32, error) {
	return d.setTrip(UVTripThreshold, mV)
}

// UnderVoltageTripMillivolts returns the under voltage threshold currently
// programmed.
func (d *Dev) UnderVoltageTripMillivolts() (int32, error) {
	return d.readTrip(UVTripThreshold, uvTripFixed)
}

// SetOverVoltageTripMillivolts programs the cell over voltage threshold and
// returns mV as requested.
func (d *Dev) SetOverVoltageTripMillivolts(mV int32) (int32, error) {
	return d.setTrip(OVTripThreshold, mV)
}

// OverVoltageTripMillivolts returns the over voltage threshold currently
// programmed.
func (d *Dev) OverVoltageTripMillivolts() (int32, error) {
	return d.readTrip(OVTripThreshold, ovTripFixed)
}
