// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package recording_test

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/pulseox"
	"github.com/OpenPSG/pulseox/recording"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCapture(t *testing.T) *os.File {
	t.Helper()

	f, err := os.OpenFile(filepath.Join(t.TempDir(), "capture.edf"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.Close()
	})

	return f
}

func pulseWindow(offset int) *pulseox.Window {
	var w pulseox.Window
	for i := range w.IR {
		theta := 2 * math.Pi * float64(offset+i) / 20
		w.IR[i] = uint32(100000 + 2000*math.Sin(theta))
		w.Red[i] = uint32(80000 + 640*math.Sin(theta))
	}
	return &w
}

func TestWriter(t *testing.T) {
	f := createCapture(t)

	start := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)
	hdr := recording.NewHeader("Patient X", "Recording 1", start, 0)

	ew, err := recording.Create(f, hdr)
	require.NoError(t, err)

	// Write three windows (twelve one-second data records)
	var written []*pulseox.Window
	for k := 0; k < 3; k++ {
		w := pulseWindow(k * pulseox.WindowSize)
		require.NoError(t, ew.WriteWindow(w))
		written = append(written, w)
	}

	// Close the writer (this writes the header)
	require.NoError(t, ew.Close())

	// Rewind the file
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	er, err := recording.Open(f)
	require.NoError(t, err)

	got := er.Header()
	assert.Equal(t, 12, got.DataRecords)
	assert.Equal(t, 256*3, got.HeaderBytes)

	want := hdr
	want.HeaderBytes = 256 * 3
	want.DataRecords = 12
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	// Verify the samples survive quantisation to 16 bits.
	step := float64(recording.DefaultFullScale) / 65535
	for k, w := range written {
		r, err := er.Next(context.Background())
		require.NoError(t, err, "window %d", k)

		for i := range w.IR {
			require.InDelta(t, w.IR[i], r.IR[i], step, "window %d sample %d", k, i)
			require.InDelta(t, w.Red[i], r.Red[i], step, "window %d sample %d", k, i)
		}
	}

	// Reader should now return EOF
	_, err = er.Next(context.Background())
	require.Equal(t, io.EOF, err)
}

func TestWriterRejectsHeader(t *testing.T) {
	f := createCapture(t)

	hdr := recording.NewHeader("", "", time.Now(), 0)
	hdr.Signals = hdr.Signals[:1]

	_, err := recording.Create(f, hdr)
	require.Error(t, err)

	hdr = recording.NewHeader("", "", time.Now(), 0)
	hdr.Signals[1].SamplesPerRecord = 50

	_, err = recording.Create(f, hdr)
	require.Error(t, err)
}

func TestWriterDropsPartialRecord(t *testing.T) {
	f := createCapture(t)

	hdr := recording.NewHeader("", "", time.Now(), 0)
	hdr.Signals[0].SamplesPerRecord = 30
	hdr.Signals[1].SamplesPerRecord = 30
	hdr.DataRecordDuration = 1200 * time.Millisecond

	ew, err := recording.Create(f, hdr)
	require.NoError(t, err)

	require.NoError(t, ew.WriteWindow(pulseWindow(0)))
	require.NoError(t, ew.Close())

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	b, err := io.ReadAll(f)
	require.NoError(t, err)

	// 100 samples fill three records of 30; the remaining 10 are dropped.
	assert.Len(t, b, 256*3+3*2*30*2)
}
