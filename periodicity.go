// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pulseox

// Tracker follows the period of the infrared signal across windows. Each
// window starts the search from the previous estimate, so a stable pulse
// costs a few autocorrelation evaluations instead of a full scan.
//
// The zero value is ready to use and starts with an unknown period. A
// Tracker is not safe for concurrent use.
type Tracker struct {
	period int // 0 while unknown, else within [LowestPeriod, HighestPeriod]
	evals  int // autocorrelation evaluations during the last Update
}

// Period returns the last period estimate in samples, or 0 if unknown.
func (t *Tracker) Period() int {
	return t.period
}

// Reset forgets the period, forcing the next Update to bootstrap.
func (t *Tracker) Reset() {
	t.period = 0
}

// Update searches x, a centred infrared signal with lag-0 autocorrelation
// lag0, for its period. It returns the period in samples (0 on failure) and
// the autocorrelation ratio at that lag.
func (t *Tracker) Update(x *[WindowSize]float64, lag0 float64) (period int, ratio float64) {
	t.evals = 0
	if lag0 <= 0 {
		t.period = 0
		return 0, 0
	}

	if t.period == 0 {
		t.period = t.bootstrap(x, lag0)
	}
	if t.period != 0 {
		t.period, ratio = t.refine(x, lag0)
	}

	return t.period, ratio
}

func (t *Tracker) autocorrelation(x *[WindowSize]float64, lag int) float64 {
	t.evals++
	return Autocorrelation(x[:], lag)
}

// bootstrap locates the neighbourhood of the first autocorrelation peak.
// Starting on that peak's rising edge keeps refinement from settling on a
// later peak, which would halve the rate.
func (t *Tracker) bootstrap(x *[WindowSize]float64, lag0 float64) int {
	lag := LowestPeriod
	right := t.autocorrelation(x, lag)

	// Already above the threshold at the shortest period: either the rate is
	// too high or we sit on the falling slope of the lag-0 peak. Follow the
	// slope down before looking for the next rise.
	if right/lag0 >= MinAutocorrelationRatio {
		for {
			aut := right
			lag += 2
			if lag > HighestPeriod {
				return 0
			}
			right = t.autocorrelation(x, lag)
			if right/lag0 < MinAutocorrelationRatio || right >= aut {
				break
			}
		}
	}

	for {
		lag += 2
		if lag > HighestPeriod {
			return 0
		}
		if t.autocorrelation(x, lag)/lag0 >= MinAutocorrelationRatio {
			return lag
		}
	}
}

// refine hill-climbs the autocorrelation from the current period, first to
// the left, then to the right.
func (t *Tracker) refine(x *[WindowSize]float64, lag0 float64) (int, float64) {
	start := t.period
	lag := start
	aut := t.autocorrelation(x, lag)
	startAut := aut

	leftLimit := false
	for {
		if lag-1 < LowestPeriod {
			leftLimit = true
			break
		}
		left := t.autocorrelation(x, lag-1)
		if left <= aut {
			break
		}
		lag, aut = lag-1, left
	}
	if leftLimit {
		// Still climbing at the bound, so the peak lies outside the range.
		lag, aut = start, startAut
	}

	if lag == start {
		for {
			if lag+1 > HighestPeriod {
				lag = 0
				break
			}
			right := t.autocorrelation(x, lag+1)
			if right <= aut {
				break
			}
			lag, aut = lag+1, right
		}
		if lag == start && leftLimit {
			lag = 0
		}
	}

	ratio := aut / lag0
	if ratio < MinAutocorrelationRatio {
		lag = 0
	}

	return lag, ratio
}
