// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package source

import (
	"fmt"
	"os"

	"github.com/OpenPSG/pulseox/internal/config"
	"github.com/OpenPSG/pulseox/recording"
)

// New creates the Source described by the configuration.
func New(c config.Source) (Source, error) {
	switch c.Kind {
	case config.KindSerial:
		device := c.Device
		if device == "" {
			device = "/dev/ttyUSB0"
		}
		baud := c.Baud
		if baud == 0 {
			baud = 115200
		}
		return OpenSerial(device, baud)
	case config.KindRecording:
		f, err := os.Open(c.Path)
		if err != nil {
			return nil, fmt.Errorf("open recording: %w", err)
		}
		r, err := recording.Open(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open recording %s: %w", c.Path, err)
		}
		return r, nil
	case config.KindSynthetic:
		return NewSynthetic(c.HeartRate, c.Ratio, c.Harmonic, c.Noise), nil
	default:
		return nil, fmt.Errorf("unknown source kind: %q", c.Kind)
	}
}
