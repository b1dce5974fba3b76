// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package recording stores raw two-channel PPG captures as EDF files, so
// acquisitions can be replayed through the estimator.
package recording

import (
	"time"

	"github.com/OpenPSG/pulseox"
)

type Version string

const (
	// Version0 represents the version of the EDF/EDF+ standard.
	Version0 Version = "0"
)

// Signal labels identifying the two PPG channels in a capture.
const (
	LabelIR  = "PPG IR"
	LabelRed = "PPG Red"
)

// DefaultFullScale is the largest count of an 18-bit sensor ADC.
const DefaultFullScale = 1<<18 - 1

const (
	digitalMin = -32768
	digitalMax = 32767
)

// Header represents the EDF/EDF+ file header.
type Header struct {
	Version            Version       // Version of the EDF/EDF+ standard (usually "0")
	PatientID          string        // Identification of the patient
	RecordingID        string        // Identification of the recording session
	StartTime          time.Time     // Start date of the recording
	HeaderBytes        int           // Number of bytes in the header
	DataRecordDuration time.Duration // Duration of a single data record in seconds
	DataRecords        int           // Number of data records, -1 if unknown
	SignalCount        int           // Number of signals in each data record
	Signals            []Signal      // Details of each signal
}

// Signal represents the characteristics of each signal in the EDF/EDF+ file.
type Signal struct {
	Label             string  // Label of the signal (e.g., PPG IR)
	TransducerType    string  // Type of transducer used
	PhysicalDimension string  // Physical dimension (e.g., counts)
	PhysicalMin       float64 // Minimum physical value
	PhysicalMax       float64 // Maximum physical value
	DigitalMin        int     // Minimum digital value
	DigitalMax        int     // Maximum digital value
	Prefiltering      string  // Pre-filtering information
	SamplesPerRecord  int     // Number of samples in each data record for this signal
	Reserved          string  // Reserved for future use
}

// NewHeader returns the header of a PPG capture with one-second data
// records. Samples are raw ADC counts in [0, fullScale]; a zero fullScale
// selects DefaultFullScale.
func NewHeader(patientID, recordingID string, start time.Time, fullScale uint32) Header {
	if fullScale == 0 {
		fullScale = DefaultFullScale
	}

	signal := func(label string) Signal {
		return Signal{
			Label:             label,
			TransducerType:    "Pulse oximeter photodiode",
			PhysicalDimension: "counts",
			PhysicalMin:       0,
			PhysicalMax:       float64(fullScale),
			DigitalMin:        digitalMin,
			DigitalMax:        digitalMax,
			SamplesPerRecord:  pulseox.SampleRate,
		}
	}

	return Header{
		Version:            Version0,
		PatientID:          patientID,
		RecordingID:        recordingID,
		StartTime:          start,
		DataRecordDuration: time.Second,
		SignalCount:        2,
		Signals:            []Signal{signal(LabelIR), signal(LabelRed)},
	}
}

// channels returns the indices of the infrared and red signals.
func (h *Header) channels() (ir, red int, ok bool) {
	ir, red = -1, -1
	for i, sig := range h.Signals {
		switch sig.Label {
		case LabelIR:
			ir = i
		case LabelRed:
			red = i
		}
	}
	return ir, red, ir >= 0 && red >= 0
}
