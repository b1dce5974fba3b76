// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pulseox

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RMS returns the root-mean-square amplitude of x and its mean square. For
// a centred signal the mean square equals the autocorrelation at lag 0.
func RMS(x []float64) (rms, meanSquare float64) {
	if len(x) == 0 {
		return 0, 0
	}

	meanSquare = floats.Dot(x, x) / float64(len(x))
	return math.Sqrt(meanSquare), meanSquare
}

// Correlation returns the Pearson correlation of two centred signals given
// their mean squares. A flat channel has no defined correlation and yields 0.
func Correlation(x, y []float64, meanSquareX, meanSquareY float64) float64 {
	denom := math.Sqrt(meanSquareX * meanSquareY)
	if len(x) == 0 || denom == 0 {
		return 0
	}

	return floats.Dot(x, y) / float64(len(x)) / denom
}

// Autocorrelation returns the element of the autocorrelation sequence of x
// at the given lag, normalised by the number of overlapping samples.
func Autocorrelation(x []float64, lag int) float64 {
	n := len(x) - lag
	if lag < 0 || n <= 0 {
		return 0
	}

	return floats.Dot(x[:n], x[lag:]) / float64(n)
}
