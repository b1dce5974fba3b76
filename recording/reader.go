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
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPSG/pulseox"
)

// Reader replays the windows of a PPG capture.
type Reader struct {
	r          io.ReadSeeker
	hdr        *Header
	irSignal   Signal
	redSignal  Signal
	irOffset   int      // Byte offset of the infrared samples in a record
	redOffset  int      // Byte offset of the red samples in a record
	record     []byte   // One raw data record
	nextRecord int      // Index of the next record to read
	ir, red    []uint32 // Decoded samples not yet returned in a window
}

// Open opens an EDF/EDF+ capture for reading. The file must hold both PPG
// channels sampled at pulseox.SampleRate.
func Open(r io.ReadSeeker) (*Reader, error) {
	hdr, err := readHeader(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}

	irIndex, redIndex, ok := hdr.channels()
	if !ok {
		return nil, fmt.Errorf("capture must contain %q and %q signals", LabelIR, LabelRed)
	}

	er := &Reader{
		r:         r,
		hdr:       hdr,
		irSignal:  hdr.Signals[irIndex],
		redSignal: hdr.Signals[redIndex],
	}

	spr := er.irSignal.SamplesPerRecord
	if spr <= 0 || spr != er.redSignal.SamplesPerRecord {
		return nil, fmt.Errorf("channels have %d and %d samples per record",
			er.irSignal.SamplesPerRecord, er.redSignal.SamplesPerRecord)
	}
	if hdr.DataRecordDuration <= 0 {
		return nil, fmt.Errorf("invalid data record duration: %s", hdr.DataRecordDuration)
	}
	// The estimator does not resample.
	if rate := float64(spr) / hdr.DataRecordDuration.Seconds(); rate != pulseox.SampleRate {
		return nil, fmt.Errorf("sample rate is %g Hz, want %d Hz", rate, pulseox.SampleRate)
	}

	recordSize := 0
	for i, sig := range hdr.Signals {
		switch i {
		case irIndex:
			er.irOffset = recordSize
		case redIndex:
			er.redOffset = recordSize
		}
		recordSize += sig.SamplesPerRecord * 2
	}
	er.record = make([]byte, recordSize)

	return er, nil
}

// Header returns the parsed file header.
func (er *Reader) Header() Header {
	return *er.hdr
}

// Next returns the next full window of the capture, or io.EOF once fewer
// than pulseox.WindowSize samples remain.
func (er *Reader) Next(ctx context.Context) (pulseox.Window, error) {
	var w pulseox.Window

	for len(er.ir) < pulseox.WindowSize {
		if err := ctx.Err(); err != nil {
			return w, err
		}
		if err := er.readRecord(); err != nil {
			return w, err
		}
	}

	copy(w.IR[:], er.ir)
	copy(w.Red[:], er.red)
	er.ir = append(er.ir[:0], er.ir[pulseox.WindowSize:]...)
	er.red = append(er.red[:0], er.red[pulseox.WindowSize:]...)

	return w, nil
}

// Close closes the underlying file if it is closable.
func (er *Reader) Close() error {
	if c, ok := er.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (er *Reader) readRecord() error {
	if er.hdr.DataRecords >= 0 && er.nextRecord >= er.hdr.DataRecords {
		return io.EOF // End of data records
	}

	pos := int64(er.hdr.HeaderBytes) + int64(er.nextRecord)*int64(len(er.record))
	if _, err := er.r.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to position: %w", err)
	}

	if _, err := io.ReadFull(er.r, er.record); err != nil {
		// A capture that was never closed does not know its record count.
		if er.hdr.DataRecords < 0 && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
			return io.EOF
		}
		return fmt.Errorf("error reading sample data: %w", err)
	}

	er.ir = er.decode(er.ir, er.irSignal, er.irOffset)
	er.red = er.decode(er.red, er.redSignal, er.redOffset)
	er.nextRecord++

	return nil
}

func (er *Reader) decode(dst []uint32, sig Signal, offset int) []uint32 {
	for i := 0; i < sig.SamplesPerRecord; i++ {
		digital := int16(binary.LittleEndian.Uint16(er.record[offset+2*i:]))
		physical := convertDigitalToPhysical(digital, sig.DigitalMin, sig.DigitalMax, sig.PhysicalMin, sig.PhysicalMax)
		dst = append(dst, toCounts(physical))
	}
	return dst
}

func readHeader(reader io.Reader) (*Header, error) {
	b := make([]byte, 256)
	if _, err := io.ReadFull(reader, b); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	field := func(from, to int) string {
		return strings.TrimSpace(string(b[from:to]))
	}

	hdr := &Header{
		Version:     Version(field(0, 8)),
		PatientID:   field(8, 88),
		RecordingID: field(88, 168),
	}

	startDate, err := time.Parse("02.01.06", field(168, 176))
	if err != nil {
		return nil, fmt.Errorf("error parsing start date: %w", err)
	}
	startTime, err := time.Parse("15.04.05", field(176, 184))
	if err != nil {
		return nil, fmt.Errorf("error parsing start time: %w", err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	if hdr.HeaderBytes, err = strconv.Atoi(field(184, 192)); err != nil {
		return nil, fmt.Errorf("error parsing header bytes: %w", err)
	}
	if hdr.DataRecords, err = strconv.Atoi(field(236, 244)); err != nil {
		return nil, fmt.Errorf("error parsing number of data records: %w", err)
	}
	if hdr.DataRecordDuration, err = time.ParseDuration(field(244, 252) + "s"); err != nil {
		return nil, fmt.Errorf("error parsing data record duration: %w", err)
	}
	if hdr.SignalCount, err = strconv.Atoi(field(252, 256)); err != nil {
		return nil, fmt.Errorf("error parsing signal count: %w", err)
	}
	if hdr.SignalCount < 0 {
		return nil, fmt.Errorf("invalid signal count: %d", hdr.SignalCount)
	}

	// Signal headers are stored field by field, each field repeated for
	// every signal.
	fields := []struct {
		width int
		set   func(sig *Signal, v string)
	}{
		{16, func(sig *Signal, v string) { sig.Label = v }},
		{80, func(sig *Signal, v string) { sig.TransducerType = v }},
		{8, func(sig *Signal, v string) { sig.PhysicalDimension = v }},
		{8, func(sig *Signal, v string) { sig.PhysicalMin = parseFloat(v) }},
		{8, func(sig *Signal, v string) { sig.PhysicalMax = parseFloat(v) }},
		{8, func(sig *Signal, v string) { sig.DigitalMin = parseInt(v) }},
		{8, func(sig *Signal, v string) { sig.DigitalMax = parseInt(v) }},
		{80, func(sig *Signal, v string) { sig.Prefiltering = v }},
		{8, func(sig *Signal, v string) { sig.SamplesPerRecord = parseInt(v) }},
		{32, func(sig *Signal, v string) { sig.Reserved = v }},
	}

	hdr.Signals = make([]Signal, hdr.SignalCount)
	for _, f := range fields {
		b := make([]byte, f.width)
		for i := range hdr.Signals {
			if _, err := io.ReadFull(reader, b); err != nil {
				return nil, fmt.Errorf("error reading signal headers: %w", err)
			}
			f.set(&hdr.Signals[i], strings.TrimSpace(string(b)))
		}
	}

	return hdr, nil
}

// convertDigitalToPhysical converts a digital value from the data record to a physical value using the calibration factors.
func convertDigitalToPhysical(digital int16, dmin, dmax int, pmin, pmax float64) float64 {
	if dmax == dmin {
		return 0 // Avoid division by zero
	}
	return pmin + (float64(digital)-float64(dmin))*(pmax-pmin)/float64(dmax-dmin)
}

// toCounts rounds a physical value to a non-negative sensor count.
func toCounts(physical float64) uint32 {
	if physical <= 0 {
		return 0
	}
	if physical >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(math.Round(physical))
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return f
}

func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
