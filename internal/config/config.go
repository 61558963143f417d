// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package config loads the runtime configuration: which transport the
// 1-Wire bus runs on, the simulated devices when it is the simulator,
// the programming-pulse pin and logging.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config defines the global configuration structure
type Config struct {
	Bus   BusConfig   `mapstructure:"bus"`
	Pulse PulseConfig `mapstructure:"pulse"`
	Log   LogConfig   `mapstructure:"log"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// BusConfig selects and parameterizes the 1-Wire transport
type BusConfig struct {
	Type   string       `mapstructure:"type"`   // "ds2480" or "sim"
	Serial SerialConfig `mapstructure:"serial"` // Used if Type is "ds2480"
	Sim    SimConfig    `mapstructure:"sim"`    // Used if Type is "sim"
}

// PulseConfig names the GPIO line driving the 12V programming supply.
// Empty means no pulse pin: EEPROM-only operation.
type PulseConfig struct {
	Pin string `mapstructure:"pin"` // e.g. "GPIO17"
}

// SimConfig defines the simulated bus population
type SimConfig struct {
	Devices []SimDeviceConfig `mapstructure:"devices"`
}

// SimDeviceConfig defines one simulated device
type SimDeviceConfig struct {
	Model       string            `mapstructure:"model"`  // e.g. "DS2431"
	Serial      string            `mapstructure:"serial"` // 6 bytes hex, e.g. "0102030405ff"
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// PersistenceConfig defines data storage settings
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap"
	Path string `mapstructure:"path"` // File path for "file/mmap" type
}

// SerialConfig defines the DS2480B serial line settings
type SerialConfig struct {
	Device   string        `mapstructure:"device"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	Parity   string        `mapstructure:"parity"`
	StopBits int           `mapstructure:"stop_bits"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from file
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/dallasmem/")
		v.AddConfigPath("$HOME/.dallasmem")
		v.AddConfigPath(".")
	}

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("bus.type", "ds2480")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to found config file: %w", err)
		}

		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate / Fixups
	config.Bus.Type = strings.ToLower(config.Bus.Type)
	fixupSerial(&config.Bus.Serial)
	for i := range config.Bus.Sim.Devices {
		dev := &config.Bus.Sim.Devices[i]
		dev.Model = strings.ToUpper(dev.Model)
		if dev.Persistence.Type == "" {
			dev.Persistence.Type = "memory"
		}
	}

	return &config, nil
}

func fixupSerial(s *SerialConfig) {
	s.Parity = strings.ToUpper(s.Parity)
	if s.Device == "" {
		s.Device = "/dev/ttyS0"
	}
	if s.BaudRate == 0 {
		s.BaudRate = 9600
	}
	if s.DataBits == 0 {
		s.DataBits = 8
	}
	if s.Parity == "" {
		s.Parity = "N"
	}
	if s.StopBits == 0 {
		s.StopBits = 1
	}
	if s.Timeout == 0 {
		s.Timeout = 500 * time.Millisecond
	}
}
