// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package dallasmem reads, writes and locks the paged memories of
// Dallas/Maxim 1-Wire EPROM and EEPROM devices.
//
// The protocol engine lives in the eprom package and talks through
// the onewire.Bus interface; this package assembles a working stack
// from a configuration file: the bus transport (a DS2480B on a serial
// port, or the in-memory simulator), the optional GPIO pin gating the
// 12V programming supply, and logging.
package dallasmem

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/onewirelab/dallasmem/eprom"
	"github.com/onewirelab/dallasmem/internal/config"
	"github.com/onewirelab/dallasmem/onewire"
	"github.com/onewirelab/dallasmem/transport/ds2480"
	"github.com/onewirelab/dallasmem/transport/progpin"
	"github.com/onewirelab/dallasmem/transport/sim"
	"github.com/onewirelab/dallasmem/transport/sim/persistence"
)

// Runtime owns the resources behind an opened device stack.
type Runtime struct {
	Bus onewire.Bus

	closers []io.Closer
}

// Close releases the bus transport and the pulse pin.
func (r *Runtime) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open assembles a device stack from a configuration file and scans
// the bus. An empty configFile falls back to the usual search paths.
// The returned engine may be unbound when no supported device
// answered; a later ScanBus picks one up without reopening anything.
func Open(configFile string) (*eprom.Device, *Runtime, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	setupLogger(cfg.Log)

	rt := &Runtime{}

	var bus onewire.Bus
	switch cfg.Bus.Type {
	case "ds2480":
		b := ds2480.NewBus(cfg.Bus.Serial)
		rt.closers = append(rt.closers, b)
		bus = b
	case "sim":
		b, err := buildSimBus(cfg.Bus.Sim)
		if err != nil {
			return nil, nil, err
		}
		rt.closers = append(rt.closers, b)
		bus = b
	default:
		return nil, nil, fmt.Errorf("unknown bus type %q", cfg.Bus.Type)
	}
	rt.Bus = bus

	var dev *eprom.Device
	if cfg.Pulse.Pin != "" {
		pin, err := progpin.Open(cfg.Pulse.Pin)
		if err != nil {
			rt.Close()
			return nil, nil, err
		}
		rt.closers = append(rt.closers, pin)
		dev = eprom.NewDeviceWithPulse(bus, pin)
	} else {
		dev = eprom.NewDevice(bus)
	}

	if dev.ScanBus() {
		name, _ := dev.DeviceName()
		slog.Info("device found", "addr", dev.Address().String(), "model", name)
	} else {
		slog.Warn("no supported device on the bus")
	}
	return dev, rt, nil
}

// buildSimBus populates a simulated bus from configuration.
func buildSimBus(cfg config.SimConfig) (*sim.Bus, error) {
	bus := sim.NewBus()
	for _, dc := range cfg.Devices {
		model, ok := eprom.LookupName(dc.Model)
		if !ok {
			bus.Close()
			return nil, fmt.Errorf("unknown device model %q", dc.Model)
		}
		serial, err := onewire.ParseSerial(dc.Serial)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("device %s: %w", dc.Model, err)
		}

		var store persistence.Storage
		switch dc.Persistence.Type {
		case "", "memory":
			// Device default, volatile.
		case "file":
			store = persistence.NewFileStorage(dc.Persistence.Path, sim.ImageSize(model))
		case "mmap":
			store = persistence.NewMmapStorage(dc.Persistence.Path, sim.ImageSize(model))
		default:
			bus.Close()
			return nil, fmt.Errorf("unknown persistence type %q", dc.Persistence.Type)
		}

		dev, err := sim.NewDevice(model, serial, store)
		if err != nil {
			bus.Close()
			return nil, err
		}
		bus.Attach(dev)
		slog.Debug("simulated device attached", "addr", dev.ROM().String(), "model", model.Name)
	}
	return bus, nil
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
