// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pulseox

// Result is the outcome of one Estimate call.
type Result struct {
	HeartRate            int     // Beats per minute, or Invalid
	HeartRateValid       bool    // HeartRate holds an estimate
	SpO2                 float64 // Oxygen saturation in percent, or Invalid
	SpO2Valid            bool    // SpO2 holds an estimate
	Period               int     // Pulse period in samples, 0 if none was found
	AutocorrelationRatio float64 // Autocorrelation at Period relative to lag 0
	ChannelCorrelation   float64 // Pearson correlation of the red and infrared signals
}

// Estimator computes heart rate and SpO2 from consecutive windows. It keeps
// the pulse period between calls, so windows from one sensor should go
// through the same Estimator in acquisition order.
type Estimator struct {
	tracker Tracker
}

// NewEstimator returns an Estimator with an unknown period.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Period returns the tracked pulse period in samples, or 0 if unknown.
func (e *Estimator) Period() int {
	return e.tracker.Period()
}

// Reset discards the tracked period.
func (e *Estimator) Reset() {
	e.tracker.Reset()
}

// Estimate processes one window. Signal quality problems never produce an
// error; they are reported through the validity flags instead.
func (e *Estimator) Estimate(w *Window) Result {
	var x, y [WindowSize]float64 // infrared, red

	irMean := Center(&w.IR, &x)
	redMean := Center(&w.Red, &y)

	// Baseline wander would otherwise leak into both RMS and autocorrelation.
	Detrend(&x)
	Detrend(&y)

	irAC, irMeanSq := RMS(x[:])
	redAC, redMeanSq := RMS(y[:])

	res := Result{
		HeartRate:          Invalid,
		SpO2:               Invalid,
		ChannelCorrelation: Correlation(x[:], y[:], irMeanSq, redMeanSq),
	}

	if res.ChannelCorrelation >= MinChannelCorrelation {
		res.Period, res.AutocorrelationRatio = e.tracker.Update(&x, irMeanSq)
	} else {
		e.tracker.Reset()
	}

	// An aperiodic signal invalidates SpO2 as well.
	if res.Period == 0 {
		return res
	}

	res.HeartRate = HeartRate(res.Period)
	res.HeartRateValid = true

	// After trend removal the means are the DC levels.
	ratio := (redAC * irMean) / (irAC * redMean)
	if spo2, ok := Saturation(ratio); ok {
		res.SpO2 = spo2
		res.SpO2Valid = true
	}

	return res
}

// HeartRate converts a pulse period in samples to beats per minute.
func HeartRate(period int) int {
	if period <= 0 {
		return Invalid
	}
	return SampleRate * 60 / period
}

// Saturation maps a ratio of ratios, (red AC/DC) / (infrared AC/DC), to an
// SpO2 percentage using an empirical quadratic calibration. Ratios outside
// (0.02, 1.84) are rejected.
func Saturation(ratio float64) (float64, bool) {
	if !(ratio > 0.02 && ratio < 1.84) {
		return Invalid, false
	}
	return (-45.060*ratio+30.354)*ratio + 94.845, true
}
