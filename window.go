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
	"errors"
	"fmt"
)

// ErrWindowLength is returned when a sample window does not hold exactly
// WindowSize samples per channel.
var ErrWindowLength = errors.New("window length mismatch")

// Window is one synchronised acquisition of raw sensor counts.
type Window struct {
	IR  [WindowSize]uint32 // Infrared channel
	Red [WindowSize]uint32 // Red channel
}

// WindowFromSlices copies two parallel sample slices into a Window.
func WindowFromSlices(ir, red []uint32) (Window, error) {
	var w Window
	if len(ir) != WindowSize || len(red) != WindowSize {
		return w, fmt.Errorf("%w: got %d infrared and %d red samples, want %d",
			ErrWindowLength, len(ir), len(red), WindowSize)
	}

	copy(w.IR[:], ir)
	copy(w.Red[:], red)

	return w, nil
}
