// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/GermanBionicSystems/bq769x0/bq76920"
	"github.com/GermanBionicSystems/bq769x0/gauge"
	"periph.io/x/conn/v3/physic"
)

// env is what a command runs against.
type env struct {
	dev   *bq76920.Dev
	cfg   Config
	out   io.Writer
	color bool
}

type command struct {
	usage string
	nargs int
	run   func(e *env, args []string) error
}

var commands = map[string]command{
	"status":    {"print the status, control registers and pack voltage", 0, runStatus},
	"configure": {"enable the ADC and program the trip thresholds of the config file", 0, runConfigure},
	"adc":       {"enable the ADC", 0, runADC},
	"chg":       {"on|off: switch the charge FET", 1, runCharge},
	"dsg":       {"on|off: switch the discharge FET", 1, runDischarge},
	"uv":        {"<mV>: set the cell under voltage trip", 1, runUnderVoltage},
	"ov":        {"<mV>: set the cell over voltage trip", 1, runOverVoltage},
	"clear":     {"clear every latched fault in SYS_STAT", 0, runClear},
	"halt":      {"open both FETs", 0, runHalt},
}

func printCommands(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].usage)
	}
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func parseMillivolts(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid millivolts %q: %w", s, err)
	}
	return int32(v), nil
}

func runStatus(e *env, args []string) error {
	for _, reg := range []bq76920.Register{bq76920.SysStat, bq76920.SysCtrl1, bq76920.SysCtrl2} {
		v, err := e.dev.ReadView(reg)
		if err != nil {
			return fmt.Errorf("reading %s: %w", reg, err)
		}
		fmt.Fprintln(e.out, v)
	}
	c, err := e.dev.Calibration()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "calibration: gain %d µV/LSB, offset %d mV\n", c.Gain, c.Offset)
	uv, err := e.dev.UnderVoltageTripMillivolts()
	if err != nil {
		return fmt.Errorf("reading UV trip: %w", err)
	}
	ov, err := e.dev.OverVoltageTripMillivolts()
	if err != nil {
		return fmt.Errorf("reading OV trip: %w", err)
	}
	fmt.Fprintf(e.out, "cell trips: UV %d mV, OV %d mV\n", uv, ov)
	pack, err := e.dev.PackVoltage()
	if err != nil {
		return fmt.Errorf("reading pack voltage: %w", err)
	}
	if !e.color || uv >= ov {
		fmt.Fprintf(e.out, "pack: %s\n", pack)
		return nil
	}
	cells := physic.ElectricPotential(e.cfg.Cells)
	g, err := gauge.New(&gauge.Opts{
		Width:  40,
		Low:    cells * physic.ElectricPotential(uv) * physic.MilliVolt,
		High:   cells * physic.ElectricPotential(ov) * physic.MilliVolt,
		Writer: e.out,
	})
	if err != nil {
		return err
	}
	if err := g.Render(pack); err != nil {
		return err
	}
	return g.Halt()
}

func runConfigure(e *env, args []string) error {
	v, err := e.dev.EnableADC()
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, v)
	if mV := e.cfg.UVTripMillivolts; mV != 0 {
		if _, err := e.dev.SetUnderVoltageTripMillivolts(mV); err != nil {
			return fmt.Errorf("setting UV trip: %w", err)
		}
	}
	if mV := e.cfg.OVTripMillivolts; mV != 0 {
		if _, err := e.dev.SetOverVoltageTripMillivolts(mV); err != nil {
			return fmt.Errorf("setting OV trip: %w", err)
		}
	}
	return nil
}

func runADC(e *env, args []string) error {
	v, err := e.dev.EnableADC()
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, v)
	return nil
}

func runCharge(e *env, args []string) error {
	on, err := parseSwitch(args[0])
	if err != nil {
		return err
	}
	v, err := e.dev.SetChargeSwitch(on)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, v)
	return nil
}

func runDischarge(e *env, args []string) error {
	on, err := parseSwitch(args[0])
	if err != nil {
		return err
	}
	v, err := e.dev.SetDischargeSwitch(on)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, v)
	return nil
}

// setTrip prints the requested and effective threshold; they differ by the
// register quantization.
func setTrip(e *env, name, arg string, set func(int32) (int32, error), get func() (int32, error)) error {
	mV, err := parseMillivolts(arg)
	if err != nil {
		return err
	}
	if _, err := set(mV); err != nil {
		return err
	}
	eff, err := get()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s trip: requested %d mV, effective %d mV\n", name, mV, eff)
	return nil
}

func runUnderVoltage(e *env, args []string) error {
	return setTrip(e, "UV", args[0], e.dev.SetUnderVoltageTripMillivolts, e.dev.UnderVoltageTripMillivolts)
}

func runOverVoltage(e *env, args []string) error {
	return setTrip(e, "OV", args[0], e.dev.SetOverVoltageTripMillivolts, e.dev.OverVoltageTripMillivolts)
}

func runClear(e *env, args []string) error {
	s, err := e.dev.ReadStatus()
	if err != nil {
		return err
	}
	if err := e.dev.ClearStatus(s); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "cleared %s\n", s)
	return nil
}

func runHalt(e *env, args []string) error {
	return e.dev.Halt()
}
