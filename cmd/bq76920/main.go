// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// bq76920 reads and controls a BQ76920 battery monitor over I²C.
//
// Usage:
//
//	bq76920 [flags] <command> [args]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/GermanBionicSystems/bq769x0/bq76920"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <command> [args]\n\ncommands:\n", os.Args[0])
	printCommands(flag.CommandLine.Output())
	fmt.Fprintln(flag.CommandLine.Output(), "\nflags:")
	flag.PrintDefaults()
}

// useColor resolves the -color flag.
func useColor(mode string, fd uintptr) (bool, error) {
	switch mode {
	case "auto":
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	}
	return false, fmt.Errorf("-color must be auto, always or never, got %q", mode)
}

// lookupCommand returns the command name and checks its argument count.
func lookupCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}
	c, ok := commands[args[0]]
	if !ok {
		return command{}, fmt.Errorf("unknown command %q", args[0])
	}
	if len(args)-1 != c.nargs {
		return command{}, fmt.Errorf("%s takes %d argument(s), got %d", args[0], c.nargs, len(args)-1)
	}
	return c, nil
}

// overrideConfig applies the flags explicitly set on fs over cfg.
func overrideConfig(cfg Config, fs *flag.FlagSet) Config {
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.(flag.Getter).Get()
		switch f.Name {
		case "bus":
			cfg.Bus = v.(string)
		case "addr":
			cfg.Address = uint16(v.(uint))
		case "crc":
			cfg.CRC = v.(bool)
		}
	})
	return cfg
}

// defineFlags registers the tool flags on fs. The ones mirroring Config
// fields are read back by overrideConfig.
func defineFlags(fs *flag.FlagSet) (configPath, colorMode *string) {
	configPath = fs.String("config", "", "YAML configuration file")
	fs.String("bus", "", "I²C bus name, empty for the first one")
	fs.Uint("addr", uint(bq76920.DefaultAddress), "I²C address")
	fs.Bool("crc", false, "the part uses CRC protected transfers")
	colorMode = fs.String("color", "auto", "draw the pack gauge: auto, always or never")
	return configPath, colorMode
}

// execute binds the chip on b and runs cmd against it.
func execute(b i2c.Bus, cfg Config, cmd command, args []string, out io.Writer, color bool) error {
	dev, err := bq76920.NewI2C(b, cfg.Address, &bq76920.Opts{CRC: cfg.CRC})
	if err != nil {
		return fmt.Errorf("failed to initialize %s at 0x%02x: %w", b, cfg.Address, err)
	}
	return cmd.run(&env{dev: dev, cfg: cfg, out: out, color: color}, args)
}

func main() {
	configPath, colorMode := defineFlags(flag.CommandLine)
	flag.Usage = usage
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	cfg = overrideConfig(cfg, flag.CommandLine)
	if err := cfg.validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cmd, err := lookupCommand(flag.Args())
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}
	color, err := useColor(*colorMode, os.Stdout.Fd())
	if err != nil {
		log.Fatal(err)
	}
	var out io.Writer = os.Stdout
	if color {
		out = colorable.NewColorableStdout()
	}

	if _, err := host.Init(); err != nil {
		log.Fatalf("Failed to initialize periph: %v", err)
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		log.Fatalf("Failed to open I²C bus: %v", err)
	}
	err = execute(bus, cfg, cmd, flag.Args()[1:], out, color)
	bus.Close()
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}
