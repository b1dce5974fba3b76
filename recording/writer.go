// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package recording

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/OpenPSG/pulseox"
)

// Writer writes PPG captures.
type Writer struct {
	w           io.WriteSeeker
	hdr         *Header
	irIndex     int
	redIndex    int
	pending     [][]float64 // Samples per signal not yet filling a data record
	dataRecords int         // Number of data records written so far.
}

// Create creates a new capture writer that writes to the given writer. The
// header must describe both PPG channels with equal samples per record,
// see NewHeader.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	hdr.DataRecords = -1 // Unknown number of data records (at this time).
	hdr.SignalCount = len(hdr.Signals)

	irIndex, redIndex, ok := hdr.channels()
	if !ok {
		return nil, fmt.Errorf("header must contain %q and %q signals", LabelIR, LabelRed)
	}
	for _, sig := range hdr.Signals {
		if sig.SamplesPerRecord != hdr.Signals[irIndex].SamplesPerRecord || sig.SamplesPerRecord <= 0 {
			return nil, fmt.Errorf("signal %q has %d samples per record, want %d",
				sig.Label, sig.SamplesPerRecord, hdr.Signals[irIndex].SamplesPerRecord)
		}
	}

	ew := &Writer{
		w:        w,
		hdr:      &hdr,
		irIndex:  irIndex,
		redIndex: redIndex,
		pending:  make([][]float64, len(hdr.Signals)),
	}

	// Write the initial header
	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Close finalizes the capture by updating the header with the total number
// of data records. Samples that do not fill a whole data record are dropped.
func (ew *Writer) Close() error {
	// Finalize the header with the actual number of data records
	ew.hdr.DataRecords = ew.dataRecords
	if err := ew.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	return nil
}

// WriteWindow appends one window to the capture. Signals other than the
// two PPG channels are written as zeros.
func (ew *Writer) WriteWindow(w *pulseox.Window) error {
	for i := range ew.pending {
		for k := 0; k < pulseox.WindowSize; k++ {
			var v float64
			switch i {
			case ew.irIndex:
				v = float64(w.IR[k])
			case ew.redIndex:
				v = float64(w.Red[k])
			}
			ew.pending[i] = append(ew.pending[i], v)
		}
	}

	spr := ew.hdr.Signals[ew.irIndex].SamplesPerRecord
	for len(ew.pending[ew.irIndex]) >= spr {
		record := make([][]float64, len(ew.pending))
		for i := range ew.pending {
			record[i] = ew.pending[i][:spr]
		}
		if err := ew.writeRecord(record); err != nil {
			return fmt.Errorf("error writing data record: %w", err)
		}
		for i := range ew.pending {
			ew.pending[i] = append(ew.pending[i][:0], ew.pending[i][spr:]...)
		}
	}

	return nil
}

// writeRecord writes a single data record at the end of the file.
func (ew *Writer) writeRecord(signals [][]float64) error {
	var totalSamples int
	for _, signal := range signals {
		totalSamples += len(signal)
	}

	// As recommended by the EDF standard.
	if totalSamples*2 > 61440 {
		return fmt.Errorf("data record too large: %d bytes, max is 61440 bytes", totalSamples*2)
	}

	pos := int64(ew.hdr.HeaderBytes) + int64(ew.dataRecords)*int64(totalSamples*2)
	if _, err := ew.w.Seek(pos, io.SeekStart); err != nil {
		return err
	}

	writer := bufio.NewWriter(ew.w)

	// Write each signal's data
	for i, signal := range ew.hdr.Signals {
		for _, sample := range signals[i] {
			digitalValue := convertPhysicalToDigital(sample, signal.PhysicalMin, signal.PhysicalMax, signal.DigitalMin, signal.DigitalMax)
			if err := binary.Write(writer, binary.LittleEndian, digitalValue); err != nil {
				return err
			}
		}
	}

	// Ensure all data is flushed to the underlying writer
	if err := writer.Flush(); err != nil {
		return err
	}

	ew.dataRecords++
	return nil
}

// headerWriter writes fixed-width ASCII header fields, keeping the first error.
type headerWriter struct {
	w   *bufio.Writer
	err error
}

func (hw *headerWriter) field(width int, v any) {
	if hw.err != nil {
		return
	}
	s := fmt.Sprint(v)
	if len(s) > width {
		s = s[:width]
	}
	_, hw.err = fmt.Fprintf(hw.w, "%-*s", width, s)
}

// writeHeader writes the EDF header at the beginning of the file.
func (ew *Writer) writeHeader() error {
	// Rewind to the beginning of the file.
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	hdr := ew.hdr
	hdr.HeaderBytes = 256 + (hdr.SignalCount * 256)

	hw := &headerWriter{w: bufio.NewWriter(ew.w)}

	hw.field(8, hdr.Version)
	hw.field(80, hdr.PatientID)
	hw.field(80, hdr.RecordingID)
	hw.field(8, hdr.StartTime.Format("02.01.06"))
	hw.field(8, hdr.StartTime.Format("15.04.05"))
	hw.field(8, hdr.HeaderBytes)
	hw.field(44, "") // Reserved
	hw.field(8, hdr.DataRecords)
	hw.field(8, int(math.Ceil(hdr.DataRecordDuration.Seconds())))
	hw.field(4, hdr.SignalCount)

	signalFields := []struct {
		width int
		value func(sig Signal) any
	}{
		{16, func(sig Signal) any { return sig.Label }},
		{80, func(sig Signal) any { return sig.TransducerType }},
		{8, func(sig Signal) any { return sig.PhysicalDimension }},
		{8, func(sig Signal) any { return formatPhysicalValue(sig.PhysicalMin) }},
		{8, func(sig Signal) any { return formatPhysicalValue(sig.PhysicalMax) }},
		{8, func(sig Signal) any { return sig.DigitalMin }},
		{8, func(sig Signal) any { return sig.DigitalMax }},
		{80, func(sig Signal) any { return sig.Prefiltering }},
		{8, func(sig Signal) any { return sig.SamplesPerRecord }},
		{32, func(sig Signal) any { return "" }}, // Reserved for future use
	}
	for _, f := range signalFields {
		for _, sig := range hdr.Signals {
			hw.field(f.width, f.value(sig))
		}
	}

	if hw.err != nil {
		return hw.err
	}

	// Ensure all data is flushed to the underlying writer
	return hw.w.Flush()
}

// convertPhysicalToDigital converts a physical value to a digital value using the calibration factors.
func convertPhysicalToDigital(physical float64, pmin, pmax float64, dmin, dmax int) int16 {
	if pmax == pmin {
		return 0 // Avoid division by zero
	}
	digital := math.Round(((physical - pmin) * (float64(dmax - dmin)) / (pmax - pmin)) + float64(dmin))
	return int16(max(float64(dmin), min(float64(dmax), digital)))
}

func formatPhysicalValue(val float64) string {
	// Try with 2 decimal places
	s := fmt.Sprintf("%.2f", val)
	if len(s) > 8 {
		// Fall back to no decimal
		s = fmt.Sprintf("%.0f", val)
	}
	return s
}
