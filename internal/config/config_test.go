// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigSerial(t *testing.T) {
	path := writeConfig(t, `
bus:
  type: DS2480
  serial:
    device: /dev/ttyUSB0
    baud_rate: 9600
    parity: n
pulse:
  pin: GPIO17
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bus.Type != "ds2480" {
		t.Errorf("bus type = %q, want ds2480", cfg.Bus.Type)
	}
	if cfg.Bus.Serial.Device != "/dev/ttyUSB0" {
		t.Errorf("device = %q", cfg.Bus.Serial.Device)
	}
	if cfg.Bus.Serial.Parity != "N" {
		t.Errorf("parity = %q, want N", cfg.Bus.Serial.Parity)
	}
	if cfg.Bus.Serial.Timeout != 500*time.Millisecond {
		t.Errorf("timeout default = %v", cfg.Bus.Serial.Timeout)
	}
	if cfg.Bus.Serial.DataBits != 8 || cfg.Bus.Serial.StopBits != 1 {
		t.Errorf("framing defaults = %d data, %d stop", cfg.Bus.Serial.DataBits, cfg.Bus.Serial.StopBits)
	}
	if cfg.Pulse.Pin != "GPIO17" {
		t.Errorf("pulse pin = %q", cfg.Pulse.Pin)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigSim(t *testing.T) {
	path := writeConfig(t, `
bus:
  type: sim
  sim:
    devices:
      - model: ds2431
        serial: "010203040506"
      - model: DS2502
        serial: "a1a2a3a4a5a6"
        persistence:
          type: file
          path: /tmp/ds2502.bin
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bus.Type != "sim" {
		t.Fatalf("bus type = %q", cfg.Bus.Type)
	}
	devs := cfg.Bus.Sim.Devices
	if len(devs) != 2 {
		t.Fatalf("got %d devices, want 2", len(devs))
	}
	if devs[0].Model != "DS2431" {
		t.Errorf("model fixup = %q, want DS2431", devs[0].Model)
	}
	if devs[0].Persistence.Type != "memory" {
		t.Errorf("persistence default = %q, want memory", devs[0].Persistence.Type)
	}
	if devs[1].Persistence.Type != "file" || devs[1].Persistence.Path != "/tmp/ds2502.bin" {
		t.Errorf("persistence = %+v", devs[1].Persistence)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bus.Type != "ds2480" {
		t.Errorf("default bus type = %q", cfg.Bus.Type)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
