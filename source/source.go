// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package source supplies the estimator with synchronised sample windows.
package source

import (
	"context"

	"github.com/OpenPSG/pulseox"
)

// Source produces consecutive sample windows. Next blocks until a full
// window is available and returns io.EOF when the source is exhausted.
type Source interface {
	Next(ctx context.Context) (pulseox.Window, error)
	Close() error
}
