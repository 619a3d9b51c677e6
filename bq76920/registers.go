// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bq76920

import "fmt"

// Register is the address of one of the chip's single byte registers.
type Register uint8

const (
	// SysStat holds the latched fault and ready flags. Writing 1 clears a flag.
	SysStat   Register = 0x00
	// SysCtrl1 selects the ADC and thermistor modes and the shutdown sequence.
	SysCtrl1  Register = 0x04
	// SysCtrl2 controls the FET drivers and the coulomb counter.
	SysCtrl2  Register = 0x05
	// OVTrip is the cell over voltage threshold, comparator bits 11:4.
	OVTrip    Register = 0x09
	// UVTrip is the cell under voltage threshold, comparator bits 11:4.
	UVTrip    Register = 0x0A
	// CCCfg must be set to 0x19 after power up.
	CCCfg     Register = 0x0B
	// BatHi is the pack voltage ADC count, bits 15:8.
	BatHi     Register = 0x2A
	// BatLo is the pack voltage ADC count, bits 7:0.
	BatLo     Register = 0x2B
	// ADCGain1 carries gain trim bits 4:3 in bits 3:2.
	ADCGain1  Register = 0x50
	// ADCOffset is the signed ADC offset in mV.
	ADCOffset Register = 0x51
	// ADCGain2 carries gain trim bits 2:0 in bits 7:5.
	ADCGain2  Register = 0x59
)

var registerNames = map[Register]string{
	SysStat:   "SYS_STAT",
	SysCtrl1:  "SYS_CTRL1",
	SysCtrl2:  "SYS_CTRL2",
	OVTrip:    "OV_TRIP",
	UVTrip:    "UV_TRIP",
	CCCfg:     "CC_CFG",
	BatHi:     "BAT_HI",
	BatLo:     "BAT_LO",
	ADCGain1:  "ADCGAIN1",
	ADCOffset: "ADCOFFSET",
	ADCGain2:  "ADCGAIN2",
}

func (r Register) String() string {
	if s, ok := registerNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Register(0x%02x)", uint8(r))
}

// Bit-fields of the registers the driver manipulates. Bit numbers are the
// ones of the register maps in section 8.5 of the datasheet.
var (
	// OCD is the latched over current in discharge fault.
	OCD           = Field{reg: SysStat, name: "OCD", offset: 0, width: 1}
	// SCD is the latched short circuit in discharge fault.
	SCD           = Field{reg: SysStat, name: "SCD", offset: 1, width: 1}
	// OV is the latched cell over voltage fault.
	OV            = Field{reg: SysStat, name: "OV", offset: 2, width: 1}
	// UV is the latched cell under voltage fault.
	UV            = Field{reg: SysStat, name: "UV", offset: 3, width: 1}
	// OverrideAlert is set when the ALERT pin was driven externally.
	OverrideAlert = Field{reg: SysStat, name: "OVRD_ALERT", offset: 4, width: 1}
	// DeviceXReady reports an internal chip fault.
	DeviceXReady  = Field{reg: SysStat, name: "DEVICE_XREADY", offset: 5, width: 1}
	// CCReady is set when a fresh coulomb counter reading is available.
	CCReady       = Field{reg: SysStat, name: "CC_READY", offset: 7, width: 1}

	// ShutB is the second half of the ship mode entry sequence.
	ShutB       = Field{reg: SysCtrl1, name: "SHUT_B", offset: 0, width: 1}
	// ShutA is the first half of the ship mode entry sequence.
	ShutA       = Field{reg: SysCtrl1, name: "SHUT_A", offset: 1, width: 1}
	// TempSel selects the external thermistor instead of the die temperature.
	TempSel     = Field{reg: SysCtrl1, name: "TEMP_SEL", offset: 3, width: 1}
	// ADCEnable turns on the voltage and temperature ADC.
	ADCEnable   = Field{reg: SysCtrl1, name: "ADC_EN", offset: 4, width: 1}
	// LoadPresent is set while a load is detected on the pack.
	LoadPresent = Field{reg: SysCtrl1, name: "LOAD_PRESENT", offset: 7, width: 1}

	// ChargeOn closes the charge FET.
	ChargeOn     = Field{reg: SysCtrl2, name: "CHG_ON", offset: 0, width: 1}
	// DischargeOn closes the discharge FET.
	DischargeOn  = Field{reg: SysCtrl2, name: "DSG_ON", offset: 1, width: 1}
	// CCOneShot starts a single coulomb counter reading.
	CCOneShot    = Field{reg: SysCtrl2, name: "CC_ONESHOT", offset: 5, width: 1}
	// CCEnable runs the coulomb counter continuously.
	CCEnable     = Field{reg: SysCtrl2, name: "CC_EN", offset: 6, width: 1}
	// DelayDisable shortens the OV and UV delays for production testing.
	DelayDisable = Field{reg: SysCtrl2, name: "DELAY_DIS", offset: 7, width: 1}

	// OVTripThreshold is the whole OV_TRIP register.
	OVTripThreshold = Field{reg: OVTrip, name: "OV_T", offset: 0, width: 8}
	// UVTripThreshold is the whole UV_TRIP register.
	UVTripThreshold = Field{reg: UVTrip, name: "UV_T", offset: 0, width: 8}
)

// layouts is the declarative register table. Registers missing from it are
// exposed as one 8 bit RAW field.
var layouts = map[Register]*Layout{
	SysStat:  mustLayout(SysStat, OCD, SCD, OV, UV, OverrideAlert, DeviceXReady, CCReady),
	SysCtrl1: mustLayout(SysCtrl1, ShutB, ShutA, TempSel, ADCEnable, LoadPresent),
	SysCtrl2: mustLayout(SysCtrl2, ChargeOn, DischargeOn, CCOneShot, CCEnable, DelayDisable),
	OVTrip:   mustLayout(OVTrip, OVTripThreshold),
	UVTrip:   mustLayout(UVTrip, UVTripThreshold),
}

// LayoutOf returns the field layout of reg.
func LayoutOf(reg Register) *Layout {
	if l, ok := layouts[reg]; ok {
		return l
	}
	return mustLayout(reg, RawField(reg))
}

// RawField is the whole byte of reg as a single field.
func RawField(reg Register) Field {
	return Field{reg: reg, name: "RAW", offset: 0, width: 8}
}
