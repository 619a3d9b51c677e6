// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gauge draws a battery pack voltage as a one line bar on a terminal
// using ANSI color codes. The bar spans the under voltage to over voltage
// trip window.
package gauge

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/physic"
)

var (
	colorOK      = color.NRGBA{0x00, 0xc0, 0x00, 0xff}
	colorWarning = color.NRGBA{0xff, 0xc0, 0x00, 0xff}
	colorTrip    = color.NRGBA{0xff, 0x00, 0x00, 0xff}
	colorEmpty   = color.NRGBA{0x30, 0x30, 0x30, 0xff}
)

// Opts represents the options available for the gauge.
type Opts struct {
	// Width is the number of cells of the bar.
	Width int
	// Low and High are the voltages at the left and right end of the bar,
	// usually the pack under and over voltage thresholds.
	Low  physic.ElectricPotential
	High physic.ElectricPotential
	// Margin is the fraction of the window, at each end, drawn as a warning.
	Margin  float64
	Palette *ansi256.Palette
	// Writer defaults to a colorable stdout.
	Writer io.Writer

	_ struct{}
}

// Dev renders voltages to the console.
type Dev struct {
	w       io.Writer
	opts    Opts
	palette *ansi256.Palette
	buf     bytes.Buffer
}

// New returns a gauge. Width must be positive and Low below High.
func New(opts *Opts) (*Dev, error) {
	if opts.Width <= 0 {
		return nil, errors.New("gauge: width must be positive")
	}
	if opts.Low >= opts.High {
		return nil, errors.New("gauge: low must be below high")
	}
	d := &Dev{opts: *opts, w: opts.Writer, palette: opts.Palette}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	if d.palette == nil {
		d.palette = ansi256.Default
	}
	if d.opts.Margin <= 0 {
		d.opts.Margin = 0.1
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("Gauge{%s..%s}", d.opts.Low, d.opts.High)
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes and ends the line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// cells returns the number of lit cells for v and their color.
func (d *Dev) cells(v physic.ElectricPotential) (int, color.NRGBA) {
	if v <= d.opts.Low {
		return 0, colorTrip
	}
	if v >= d.opts.High {
		return d.opts.Width, colorTrip
	}
	f := float64(v-d.opts.Low) / float64(d.opts.High-d.opts.Low)
	n := int(f*float64(d.opts.Width) + 0.5)
	if f < d.opts.Margin || f > 1-d.opts.Margin {
		return n, colorWarning
	}
	return n, colorOK
}

// Render draws v over the current line.
func (d *Dev) Render(v physic.ElectricPotential) error {
	n, c := d.cells(v)
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < d.opts.Width; i++ {
		if i < n {
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		} else {
			_, _ = io.WriteString(&d.buf, d.palette.Block(colorEmpty))
		}
	}
	_, _ = fmt.Fprintf(&d.buf, "\033[0m %s", v)
	_, err := d.buf.WriteTo(d.w)
	return err
}
