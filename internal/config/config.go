// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package config loads the runtime configuration of the pulseox command.
// The estimator constants are fixed at build time and are not part of it.
package config

import (
	"fmt"
	"os"

	"github.com/OpenPSG/pulseox"
	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	KindSerial    = "serial"
	KindRecording = "recording"
	KindSynthetic = "synthetic"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Source Source `yaml:"source"`
	Log    Log    `yaml:"log"`
}

// Source selects where sample windows come from.
type Source struct {
	Kind string `yaml:"kind"` // serial, recording or synthetic

	// Serial bridge
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	// Recording replay
	Path string `yaml:"path"`

	// Synthetic signal
	HeartRate float64 `yaml:"heart_rate"` // bpm
	Ratio     float64 `yaml:"ratio"`      // ratio of ratios
	Harmonic  float64 `yaml:"harmonic"`   // second harmonic amplitude relative to the fundamental
	Noise     float64 `yaml:"noise"`      // noise amplitude relative to the fundamental
}

// Log controls diagnostic output.
type Log struct {
	Quiet bool `yaml:"quiet"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Source: Source{
			Kind:      KindSerial,
			Device:    "/dev/ttyUSB0",
			Baud:      115200,
			HeartRate: 75,
			Ratio:     0.5,
		},
	}
}

// Load reads a YAML configuration file. Omitted fields take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Source.Kind == "" {
		c.Source.Kind = d.Source.Kind
	}
	if c.Source.Device == "" {
		c.Source.Device = d.Source.Device
	}
	if c.Source.Baud == 0 {
		c.Source.Baud = d.Source.Baud
	}
	if c.Source.HeartRate == 0 {
		c.Source.HeartRate = d.Source.HeartRate
	}
	if c.Source.Ratio == 0 {
		c.Source.Ratio = d.Source.Ratio
	}
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	s := c.Source
	switch s.Kind {
	case KindSerial:
		if s.Device == "" {
			return fmt.Errorf("serial source requires a device")
		}
		if s.Baud <= 0 {
			return fmt.Errorf("baud must be positive, got %d", s.Baud)
		}
	case KindRecording:
		if s.Path == "" {
			return fmt.Errorf("recording source requires a path")
		}
	case KindSynthetic:
		if s.HeartRate < pulseox.MinHeartRate || s.HeartRate > pulseox.MaxHeartRate {
			return fmt.Errorf("heart_rate must be between %d and %d, got %g",
				pulseox.MinHeartRate, pulseox.MaxHeartRate, s.HeartRate)
		}
		if s.Ratio <= 0 {
			return fmt.Errorf("ratio must be positive, got %g", s.Ratio)
		}
		if s.Harmonic < 0 || s.Noise < 0 {
			return fmt.Errorf("harmonic and noise must be non-negative")
		}
	default:
		return fmt.Errorf("unknown source kind: %q", s.Kind)
	}

	return nil
}
