// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bq76920 controls a Texas Instruments BQ76920 3-5 cell battery
// monitor analog front end over an I²C bus.
//
// The driver exposes the chip's 8-bit registers as Views: a register byte
// decoded into named bit-fields. Fields are mutated with read-modify-write
// cycles that never touch bits outside the field being changed. On top of
// that it provides the charge/discharge switch controls, ADC enable, the
// calibrated pack voltage and the under/over voltage trip thresholds.
//
// Every method is a synchronous bus transaction. A Dev holds no lock; callers
// sharing one across goroutines must serialize access themselves, and a
// ModifyView is not atomic with respect to other bus masters.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/bq76920.pdf
package bq76920
