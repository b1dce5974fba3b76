// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pulseox_test

import (
	"math"
	"testing"

	"github.com/OpenPSG/pulseox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineWindow builds a window whose channels share one sinusoidal pulse of
// the given period (in samples). redPhase shifts the red channel.
func sineWindow(period, irDC, irAC, redDC, redAC, redPhase float64) *pulseox.Window {
	var w pulseox.Window
	for i := range w.IR {
		theta := 2 * math.Pi * float64(i) / period
		w.IR[i] = uint32(math.Round(irDC + irAC*math.Sin(theta)))
		w.Red[i] = uint32(math.Round(redDC + redAC*math.Sin(theta+redPhase)))
	}
	return &w
}

func polynomial(r float64) float64 {
	return (-45.060*r+30.354)*r + 94.845
}

func TestEstimate(t *testing.T) {
	// 75 bpm at 25 Hz is a 20 sample period; red AC/DC is 0.4 of infrared AC/DC.
	w := sineWindow(20, 100000, 2000, 80000, 640, 0)

	e := pulseox.NewEstimator()
	res := e.Estimate(w)

	require.True(t, res.HeartRateValid)
	assert.GreaterOrEqual(t, res.HeartRate, 74)
	assert.LessOrEqual(t, res.HeartRate, 76)

	require.True(t, res.SpO2Valid)
	assert.InDelta(t, polynomial(0.4), res.SpO2, 0.01)
	assert.InDelta(t, 99.777, res.SpO2, 0.01)

	assert.Equal(t, 20, res.Period)
	assert.Equal(t, 20, e.Period())
	assert.Greater(t, res.AutocorrelationRatio, 0.95)
	assert.InDelta(t, 1.0, res.ChannelCorrelation, 1e-3)
}

func TestEstimateSinusoidPeriods(t *testing.T) {
	// Below 14 samples the bootstrap deliberately skips the first
	// autocorrelation peak, and a peak at HighestPeriod cannot be confirmed.
	for period := 14; period < pulseox.HighestPeriod; period++ {
		w := sineWindow(float64(period), 120000, 1500, 90000, 450, 0)

		res := pulseox.NewEstimator().Estimate(w)

		want := int(math.Round(float64(pulseox.SampleRate*60) / float64(period)))
		require.True(t, res.HeartRateValid, "period %d", period)
		assert.InDelta(t, want, res.HeartRate, 1, "period %d", period)

		require.True(t, res.SpO2Valid, "period %d", period)
		assert.InDelta(t, polynomial(0.4), res.SpO2, 0.05, "period %d", period)
	}
}

func TestEstimateContinuity(t *testing.T) {
	w := sineWindow(25, 100000, 2000, 80000, 640, 0)

	e := pulseox.NewEstimator()
	first := e.Estimate(w)
	second := e.Estimate(w)

	require.True(t, first.HeartRateValid)
	assert.Equal(t, 60, first.HeartRate)
	assert.Equal(t, first, second)
}

func TestEstimateLowChannelCorrelation(t *testing.T) {
	e := pulseox.NewEstimator()

	res := e.Estimate(sineWindow(20, 100000, 2000, 80000, 640, 0))
	require.True(t, res.HeartRateValid)
	require.NotZero(t, e.Period())

	// A 60 degree phase lag puts the channel correlation near 0.5.
	res = e.Estimate(sineWindow(20, 100000, 2000, 80000, 640, math.Pi/3))

	assert.InDelta(t, 0.5, res.ChannelCorrelation, 0.02)
	assert.False(t, res.HeartRateValid)
	assert.Equal(t, pulseox.Invalid, res.HeartRate)
	assert.False(t, res.SpO2Valid)
	assert.Equal(t, float64(pulseox.Invalid), res.SpO2)
	assert.Zero(t, e.Period())
}

func TestEstimateFlatChannel(t *testing.T) {
	w := sineWindow(20, 100000, 2000, 80000, 640, 0)
	for i := range w.IR {
		w.IR[i] = 50000
	}

	res := pulseox.NewEstimator().Estimate(w)

	assert.Zero(t, res.ChannelCorrelation)
	assert.False(t, res.HeartRateValid)
	assert.False(t, res.SpO2Valid)

	var flat pulseox.Window
	res = pulseox.NewEstimator().Estimate(&flat)

	assert.Zero(t, res.ChannelCorrelation)
	assert.False(t, res.HeartRateValid)
	assert.False(t, res.SpO2Valid)
}

func TestEstimateRatioOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		redAC float64
	}{
		{"high", 3200}, // ratio 2.0
		{"low", 16},    // ratio 0.01
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := pulseox.NewEstimator().Estimate(sineWindow(20, 100000, 2000, 80000, tt.redAC, 0))

			assert.True(t, res.HeartRateValid)
			assert.Equal(t, 75, res.HeartRate)
			assert.False(t, res.SpO2Valid)
			assert.Equal(t, float64(pulseox.Invalid), res.SpO2)
		})
	}
}

func TestEstimateAperiodic(t *testing.T) {
	// A single step correlates across channels but has no period.
	var w pulseox.Window
	for i := range w.IR {
		w.IR[i], w.Red[i] = 100000, 80000
		if i%50 > 45 {
			w.IR[i], w.Red[i] = 104000, 81000
		}
	}

	e := pulseox.NewEstimator()
	res := e.Estimate(&w)

	assert.False(t, res.HeartRateValid)
	assert.False(t, res.SpO2Valid)
	assert.Zero(t, e.Period())
}

func TestSaturation(t *testing.T) {
	spo2, ok := pulseox.Saturation(0.4)
	require.True(t, ok)
	assert.InDelta(t, 99.777, spo2, 1e-9)

	// The curve is not clamped to 100 percent or above 0.
	spo2, ok = pulseox.Saturation(1.83)
	require.True(t, ok)
	assert.Less(t, spo2, 0.0)

	for _, r := range []float64{0, 0.02, 1.84, 3, -1, math.NaN(), math.Inf(1)} {
		spo2, ok = pulseox.Saturation(r)
		assert.False(t, ok, "ratio %v", r)
		assert.Equal(t, float64(pulseox.Invalid), spo2)
	}
}

func TestHeartRate(t *testing.T) {
	assert.Equal(t, 75, pulseox.HeartRate(20))
	assert.Equal(t, 125, pulseox.HeartRate(pulseox.LowestPeriod))
	assert.Equal(t, 40, pulseox.HeartRate(pulseox.HighestPeriod))
	assert.Equal(t, pulseox.Invalid, pulseox.HeartRate(0))
}

func TestWindowFromSlices(t *testing.T) {
	ir := make([]uint32, pulseox.WindowSize)
	red := make([]uint32, pulseox.WindowSize)
	for i := range ir {
		ir[i], red[i] = uint32(i), uint32(2*i)
	}

	w, err := pulseox.WindowFromSlices(ir, red)
	require.NoError(t, err)
	assert.Equal(t, uint32(99), w.IR[99])
	assert.Equal(t, uint32(198), w.Red[99])

	_, err = pulseox.WindowFromSlices(ir[:10], red)
	require.ErrorIs(t, err, pulseox.ErrWindowLength)

	_, err = pulseox.WindowFromSlices(ir, append(red, 1))
	require.ErrorIs(t, err, pulseox.ErrWindowLength)
}
