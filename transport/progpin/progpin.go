// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package progpin drives the GPIO line switching the 12V programming
// supply onto the 1-Wire bus. EPROM fuses need that supply during the
// programming pulse; boards without it simply run without a pin.
package progpin

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin switches a GPIO line. High applies the programming supply.
type Pin struct {
	pin gpio.PinOut
}

// Open resolves a GPIO line by name ("GPIO17", "P1_11", a chip pin
// alias) and drives it low.
func Open(name string) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("progpin: host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("progpin: no pin named %q", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("progpin: %s: %w", name, err)
	}
	slog.Debug("progpin: opened", "pin", p.Name())
	return &Pin{pin: p}, nil
}

// Set drives the line; errors are logged, the pulse timing cannot
// wait on a retry.
func (p *Pin) Set(high bool) {
	level := gpio.Low
	if high {
		level = gpio.High
	}
	if err := p.pin.Out(level); err != nil {
		slog.Error("progpin: set failed", "pin", p.pin.Name(), "level", level, "err", err)
	}
}

// Close releases the supply.
func (p *Pin) Close() error {
	return p.pin.Out(gpio.Low)
}
