// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains helpers shared by the BQ769x0 packages.
package common

// CRC8 calculates the CRC-8 of the byte slice using the polynomial
// x^8 + x^2 + x + 1 (0x07) and a zero initial value. This is the frame check
// used by the CRC enabled BQ769x0 variants on I²C.
func CRC8(bytes []byte) byte {
	var crc byte
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ 0x07
			}
		}
	}
	return crc
}
