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
	"context"
	"math"

	"github.com/OpenPSG/pulseox"
)

// Channel levels of the simulated sensor, in raw counts.
const (
	syntheticIRDC  = 100000
	syntheticIRAC  = 2000
	syntheticRedDC = 80000
)

// Synthetic simulates a PPG sensor: a pulse made of a fundamental at the
// heart rate plus a second harmonic, identical in shape on both channels
// and scaled so the red channel's AC/DC is ratio times the infrared one.
// The output is deterministic and continuous across windows.
type Synthetic struct {
	heartRate float64 // bpm
	harmonic  float64
	noise     float64
	redAC     float64
	n         int // Index of the next sample
}

// NewSynthetic returns a simulator. harmonic and noise are amplitudes
// relative to the fundamental.
func NewSynthetic(heartRate, ratio, harmonic, noise float64) *Synthetic {
	return &Synthetic{
		heartRate: heartRate,
		harmonic:  harmonic,
		noise:     noise,
		redAC:     ratio * syntheticIRAC * syntheticRedDC / syntheticIRDC,
	}
}

// Next returns the next window.
func (s *Synthetic) Next(ctx context.Context) (pulseox.Window, error) {
	var w pulseox.Window
	if err := ctx.Err(); err != nil {
		return w, err
	}

	for i := range w.IR {
		phase := 2 * math.Pi * s.heartRate / 60 * float64(s.n) / pulseox.SampleRate
		pulse := math.Sin(phase) + s.harmonic*math.Sin(2*phase)

		ir := pulse + s.noise*noise(s.n, 0)
		red := pulse + s.noise*noise(s.n, 78.233)

		w.IR[i] = uint32(math.Round(syntheticIRDC + syntheticIRAC*ir))
		w.Red[i] = uint32(math.Round(syntheticRedDC + s.redAC*red))
		s.n++
	}

	return w, nil
}

// Close is a no-op.
func (s *Synthetic) Close() error {
	return nil
}

// noise is a cheap deterministic hash of the sample index in [-1, 1).
func noise(n int, seed float64) float64 {
	v := math.Sin(12.9898*float64(n)+seed) * 43758.5453
	return 2*(v-math.Floor(v)) - 1
}
