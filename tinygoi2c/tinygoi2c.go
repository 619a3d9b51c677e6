// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tinygoi2c exposes a TinyGo I²C bus (tinygo.org/x/drivers.I2C,
// implemented by machine.I2C) as a periph.io i2c.Bus, so the drivers in this
// repository run unchanged on microcontrollers.
package tinygoi2c

import (
	"errors"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// ErrSpeed is returned by SetSpeed; the TinyGo bus clock is fixed when the
// machine.I2C is configured.
var ErrSpeed = errors.New("tinygoi2c: bus speed is set by machine.I2C.Configure")

// Bus adapts a drivers.I2C.
type Bus struct {
	bus  drivers.I2C
	name string
}

// New wraps bus. name is returned by String.
func New(bus drivers.I2C, name string) *Bus {
	if name == "" {
		name = "tinygo-i2c"
	}
	return &Bus{bus: bus, name: name}
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	return b.bus.Tx(addr, w, r)
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return ErrSpeed
}

func (b *Bus) String() string {
	return b.name
}

var _ i2c.Bus = &Bus{}
