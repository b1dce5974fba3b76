// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */


// Command ppgsim writes a synthetic two-channel PPG capture to an EDF file,
// for replay through the pulseox command.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/OpenPSG/pulseox"
	"github.com/OpenPSG/pulseox/internal/monitoring"
	"github.com/OpenPSG/pulseox/recording"
	"github.com/OpenPSG/pulseox/source"
	"github.com/google/uuid"
)

func main() {
	out := flag.String("out", "capture.edf", "Output EDF file")
	bpm := flag.Float64("bpm", 75, "Simulated heart rate in beats per minute")
	ratio := flag.Float64("ratio", 0.5, "Simulated ratio of ratios")
	harmonic := flag.Float64("harmonic", 0.3, "Second harmonic amplitude relative to the fundamental")
	noise := flag.Float64("noise", 0, "Noise amplitude relative to the fundamental")
	seconds := flag.Int("seconds", 60, "Capture length in seconds, rounded up to whole windows")
	patient := flag.String("patient", "X X X X", "Patient identification field")
	flag.Parse()

	if *seconds <= 0 {
		log.Fatalf("seconds must be positive, got %d", *seconds)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create capture: %v", err)
	}
	defer f.Close()

	recordingID := uuid.NewString()
	if err := write(f, *patient, recordingID, *seconds, source.NewSynthetic(*bpm, *ratio, *harmonic, *noise)); err != nil {
		log.Fatalf("failed to write capture: %v", err)
	}

	monitoring.Logf("wrote %s (recording %s)", *out, recordingID)
}

func write(f *os.File, patient, recordingID string, seconds int, sim *source.Synthetic) error {
	ew, err := recording.Create(f, recording.NewHeader(patient, recordingID, time.Now(), 0))
	if err != nil {
		return err
	}

	windows := (seconds + pulseox.WindowSeconds - 1) / pulseox.WindowSeconds
	for i := 0; i < windows; i++ {
		w, err := sim.Next(context.Background())
		if err != nil {
			return err
		}
		if err := ew.WriteWindow(&w); err != nil {
			return err
		}
	}

	return ew.Close()
}
