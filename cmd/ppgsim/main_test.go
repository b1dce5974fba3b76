// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */


package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenPSG/pulseox"
	"github.com/OpenPSG/pulseox/recording"
	"github.com/OpenPSG/pulseox/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.edf")
	f, err := os.Create(path)
	require.NoError(t, err)

	require.NoError(t, write(f, "X X X X", "rec-1", 10, source.NewSynthetic(60, 0.4, 0.3, 0)))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	er, err := recording.Open(f)
	require.NoError(t, err)
	defer er.Close()

	hdr := er.Header()
	assert.Equal(t, "rec-1", hdr.RecordingID)
	assert.Equal(t, 12, hdr.DataRecords)

	est := pulseox.NewEstimator()
	windows := 0
	for {
		w, err := er.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		res := est.Estimate(&w)
		assert.True(t, res.HeartRateValid)
		assert.Equal(t, 60, res.HeartRate)
		windows++
	}
	assert.Equal(t, 3, windows)
}
