// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/GermanBionicSystems/bq769x0/bq76920"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file.
type Config struct {
	// Bus is the periph bus name; empty selects the first bus.
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
	CRC     bool   `yaml:"crc"`
	// Cells is the number of series cells, used to scale the per cell trip
	// thresholds to the pack voltage.
	Cells int `yaml:"cells"`
	// Per cell thresholds applied by the configure command. 0 leaves the
	// chip default.
	UVTripMillivolts int32 `yaml:"uv_trip_mv"`
	OVTripMillivolts int32 `yaml:"ov_trip_mv"`
}

func defaultConfig() Config {
	return Config{Address: bq76920.DefaultAddress, Cells: 3}
}

// loadConfig reads path over the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// validate checks the configuration for values the chip cannot take.
func (c Config) validate() error {
	if c.Address == 0 || c.Address > 0x7f {
		return fmt.Errorf("address 0x%x is not a 7 bit I²C address", c.Address)
	}
	if c.Cells < 3 || c.Cells > 5 {
		return fmt.Errorf("cells must be 3 to 5, got %d", c.Cells)
	}
	if c.UVTripMillivolts < 0 || c.OVTripMillivolts < 0 {
		return errors.New("trip thresholds must not be negative")
	}
	if c.UVTripMillivolts != 0 && c.OVTripMillivolts != 0 && c.UVTripMillivolts >= c.OVTripMillivolts {
		return fmt.Errorf("uv_trip_mv %d must be below ov_trip_mv %d", c.UVTripMillivolts, c.OVTripMillivolts)
	}
	return nil
}
