// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pulseox

import "gonum.org/v1/gonum/floats"

// centeredIndex holds the sample indices recentred to
// [-(WindowSize-1)/2, (WindowSize-1)/2].
var centeredIndex = func() (k [WindowSize]float64) {
	mean := float64(WindowSize-1) / 2
	for i := range k {
		k[i] = float64(i) - mean
	}
	return k
}()

// Center converts raw counts to real values with the channel mean removed
// and returns that mean, the DC level of the channel.
func Center(raw *[WindowSize]uint32, x *[WindowSize]float64) float64 {
	for i, v := range raw {
		x[i] = float64(v)
	}

	mean := floats.Sum(x[:]) / WindowSize
	floats.AddConst(-mean, x[:])

	return mean
}

// Detrend removes the best linear fit of x against the recentred sample
// index, in place, and returns its slope. x must already have zero mean,
// which fixes the intercept at zero.
func Detrend(x *[WindowSize]float64) float64 {
	beta := floats.Dot(centeredIndex[:], x[:]) / sumX2
	floats.AddScaled(x[:], -beta, centeredIndex[:])
	return beta
}
