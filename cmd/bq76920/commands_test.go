// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/bq769x0/bq76920"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

const addr = bq76920.DefaultAddress

func read(reg bq76920.Register, v byte) i2ctest.IO {
	return i2ctest.IO{Addr: addr, W: []byte{byte(reg)}, R: []byte{v}}
}

func write(reg bq76920.Register, v byte) i2ctest.IO {
	return i2ctest.IO{Addr: addr, W: []byte{byte(reg), v}}
}

// gain 365 µV/LSB, offset 0 mV
var opsCalibration = []i2ctest.IO{
	read(bq76920.ADCOffset, 0x00),
	read(bq76920.ADCGain1, 0x00),
	read(bq76920.ADCGain2, 0x00),
}

func newEnv(t *testing.T, color bool, ops ...i2ctest.IO) (*env, *bytes.Buffer, *i2ctest.Playback) {
	t.Helper()
	pb := &i2ctest.Playback{
		Ops:       append([]i2ctest.IO{write(bq76920.CCCfg, 0x19)}, ops...),
		DontPanic: true,
	}
	dev, err := bq76920.NewI2C(pb, addr, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := defaultConfig()
	cfg.UVTripMillivolts = 2800
	cfg.OVTripMillivolts = 4200
	var buf bytes.Buffer
	return &env{dev: dev, cfg: cfg, out: &buf, color: color}, &buf, pb
}

func closePlayback(t *testing.T, pb *i2ctest.Playback) {
	t.Helper()
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func statusOps() []i2ctest.IO {
	ops := []i2ctest.IO{
		read(bq76920.SysStat, 0x80),
		read(bq76920.SysCtrl1, 0x18),
		read(bq76920.SysCtrl2, 0x43),
	}
	ops = append(ops, opsCalibration...)
	return append(ops,
		read(bq76920.UVTrip, 0x10),
		read(bq76920.OVTrip, 0xff),
		read(bq76920.BatHi, 0x1d),
		read(bq76920.BatLo, 0x6e),
	)
}

func TestStatus(t *testing.T) {
	e, buf, pb := newEnv(t, false, statusOps()...)
	defer closePlayback(t, pb)
	if err := runStatus(e, nil); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %q", lines)
	}
	want := []string{
		"SYS_STAT(0x80){OCD=0 SCD=0 OV=0 UV=0 OVRD_ALERT=0 DEVICE_XREADY=0 CC_READY=1}",
		"SYS_CTRL1(0x18){SHUT_B=0 SHUT_A=0 TEMP_SEL=1 ADC_EN=1 LOAD_PRESENT=0}",
		"SYS_CTRL2(0x43){CHG_ON=1 DSG_ON=1 CC_ONESHOT=0 CC_EN=1 DELAY_DIS=0}",
		"calibration: gain 365 µV/LSB, offset 0 mV",
		"cell trips: UV 1588 mV, OV 4482 mV",
	}
	if diff := cmp.Diff(lines[:5], want); diff != "" {
		t.Errorf("unexpected output (-got +want):\n%s", diff)
	}
	if !strings.HasPrefix(lines[5], "pack: ") {
		t.Errorf("missing pack voltage: %q", lines[5])
	}
}

func TestStatusGauge(t *testing.T) {
	e, buf, pb := newEnv(t, true, statusOps()...)
	defer closePlayback(t, pb)
	if err := runStatus(e, nil); err != nil {
		t.Fatal(err)
	}
	if s := buf.String(); !strings.HasSuffix(s, "\033[0m\n") || strings.Contains(s, "pack: ") {
		t.Errorf("expected a gauge, got %q", s)
	}
}

func TestConfigure(t *testing.T) {
	ops := []i2ctest.IO{
		read(bq76920.SysCtrl1, 0x00),
		write(bq76920.SysCtrl1, 0x18),
	}
	ops = append(ops, opsCalibration...)
	ops = append(ops,
		read(bq76920.UVTrip, 0x00),
		write(bq76920.UVTrip, 0xdf),
		read(bq76920.OVTrip, 0x00),
		write(bq76920.OVTrip, 0xcf),
	)
	e, _, pb := newEnv(t, false, ops...)
	defer closePlayback(t, pb)
	if err := runConfigure(e, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSwitchCommands(t *testing.T) {
	e, buf, pb := newEnv(t, false,
		read(bq76920.SysCtrl2, 0x40),
		write(bq76920.SysCtrl2, 0x41),
		read(bq76920.SysCtrl2, 0x41),
		write(bq76920.SysCtrl2, 0x43),
		read(bq76920.SysCtrl2, 0x43),
		write(bq76920.SysCtrl2, 0x42),
	)
	defer closePlayback(t, pb)
	if err := runCharge(e, []string{"on"}); err != nil {
		t.Fatal(err)
	}
	if err := runDischarge(e, []string{"on"}); err != nil {
		t.Fatal(err)
	}
	if err := runCharge(e, []string{"off"}); err != nil {
		t.Fatal(err)
	}
	if err := runCharge(e, []string{"maybe"}); err == nil {
		t.Error("expected an error for an invalid switch state")
	}
	if !strings.Contains(buf.String(), "SYS_CTRL2(0x42)") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTripCommands(t *testing.T) {
	ops := append([]i2ctest.IO{}, opsCalibration...)
	ops = append(ops,
		read(bq76920.UVTrip, 0x00),
		write(bq76920.UVTrip, 0xdf),
		read(bq76920.UVTrip, 0xdf),
	)
	e, buf, pb := newEnv(t, false, ops...)
	defer closePlayback(t, pb)
	if err := runUnderVoltage(e, []string{"2800"}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "UV trip: requested 2800 mV, effective 2797 mV\n"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
	if err := runOverVoltage(e, []string{"high"}); err == nil {
		t.Error("expected an error for invalid millivolts")
	}
	if err := runUnderVoltage(e, []string{"-5"}); !errors.Is(err, bq76920.ErrThresholdRange) {
		t.Errorf("runUnderVoltage(-5)=%v want ErrThresholdRange", err)
	}
}

func TestClearAndHalt(t *testing.T) {
	e, buf, pb := newEnv(t, false,
		read(bq76920.SysStat, 0x0c),
		write(bq76920.SysStat, 0x0c),
		read(bq76920.SysCtrl2, 0x43),
		write(bq76920.SysCtrl2, 0x40),
	)
	defer closePlayback(t, pb)
	if err := runClear(e, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "cleared SYS_STAT(0x0c)") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if err := runHalt(e, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLookupCommand(t *testing.T) {
	tests := []struct {
		args []string
		ok   bool
	}{
		{nil, false},
		{[]string{"status"}, true},
		{[]string{"status", "x"}, false},
		{[]string{"chg"}, false},
		{[]string{"chg", "on"}, true},
		{[]string{"explode"}, false},
	}
	for _, test := range tests {
		if _, err := lookupCommand(test.args); (err == nil) != test.ok {
			t.Errorf("lookupCommand(%q)=%v", test.args, err)
		}
	}
}

func TestUseColor(t *testing.T) {
	if c, err := useColor("always", 0); err != nil || !c {
		t.Errorf("always: %t, %v", c, err)
	}
	if c, err := useColor("never", 0); err != nil || c {
		t.Errorf("never: %t, %v", c, err)
	}
	if _, err := useColor("sometimes", 0); err == nil {
		t.Error("expected an error")
	}
}

func TestExecute(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			write(bq76920.CCCfg, 0x19),
			read(bq76920.SysCtrl2, 0x43),
			write(bq76920.SysCtrl2, 0x40),
		},
		DontPanic: true,
	}
	defer closePlayback(t, pb)
	var buf bytes.Buffer
	if err := execute(pb, defaultConfig(), commands["halt"], nil, &buf, false); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteInitError(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	var buf bytes.Buffer
	err := execute(pb, defaultConfig(), commands["halt"], nil, &buf, false)
	if err == nil || !strings.Contains(err.Error(), "failed to initialize") {
		t.Errorf("execute() on a silent bus=%v", err)
	}
}
