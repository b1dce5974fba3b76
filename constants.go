// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package pulseox estimates heart rate and blood-oxygen saturation from
// fixed-length windows of infrared and red photoplethysmography samples.
package pulseox

// Sampling configuration. Every other constant is derived from these, so
// changing the rate or window duration keeps the set coherent.
const (
	SampleRate    = 25 // Hz
	WindowSeconds = 4
	WindowSize    = SampleRate * WindowSeconds
)

const (
	MaxHeartRate = 125 // bpm
	MinHeartRate = 40  // bpm

	// LowestPeriod is the minimal distance between peaks, in samples.
	LowestPeriod = SampleRate * 60 / MaxHeartRate
	// HighestPeriod is the maximal distance between peaks, in samples.
	HighestPeriod = SampleRate * 60 / MinHeartRate
)

const (
	// MinAutocorrelationRatio is the minimal ratio of the autocorrelation at
	// the chosen lag to the one at lag 0 for a signal to count as periodic.
	MinAutocorrelationRatio = 0.5
	// MinChannelCorrelation is the minimal Pearson correlation between the
	// red and infrared signals.
	MinChannelCorrelation = 0.8
)

// Invalid is reported for heart rate and SpO2 when no estimate is available.
const Invalid = -999

// sumX2 is the sum of squares of the sample indices 0..WindowSize-1
// recentred around their mean, N(N²-1)/12.
const sumX2 = float64(WindowSize) * (float64(WindowSize)*float64(WindowSize) - 1) / 12
