// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bq769x0 is a container for the TI BQ769x0 battery monitor driver
// and its tools.
//
// The driver lives in bq76920. tinygoi2c runs it on TinyGo I²C buses, gauge
// draws the pack voltage on a terminal and cmd/bq76920 is a command line
// front end.
package bq769x0
