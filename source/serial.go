// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenPSG/pulseox"
	"github.com/OpenPSG/pulseox/internal/monitoring"
	"go.bug.st/serial"
)

// Serial reads samples from a sensor bridge that prints one "<ir>,<red>"
// pair of raw counts per line. Blank lines and lines starting with '#' are
// ignored; other malformed lines are logged and skipped.
type Serial struct {
	port io.ReadCloser
	scan *bufio.Scanner
	line int
}

// OpenSerial opens the serial device with 8N1 framing at the given baud rate.
func OpenSerial(device string, baud int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}

	return NewSerial(port), nil
}

// NewSerial reads samples from an already open port.
func NewSerial(port io.ReadCloser) *Serial {
	return &Serial{
		port: port,
		scan: bufio.NewScanner(port),
	}
}

// Next collects the next pulseox.WindowSize samples. A pending Next is
// unblocked by Close.
func (s *Serial) Next(ctx context.Context) (pulseox.Window, error) {
	var w pulseox.Window

	for n := 0; n < pulseox.WindowSize; {
		if err := ctx.Err(); err != nil {
			return w, err
		}

		if !s.scan.Scan() {
			if err := s.scan.Err(); err != nil {
				return w, fmt.Errorf("read serial: %w", err)
			}
			return w, io.EOF
		}
		s.line++

		text := strings.TrimSpace(s.scan.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		ir, red, err := parseSample(text)
		if err != nil {
			monitoring.Logf("serial: skipping line %d: %v", s.line, err)
			continue
		}

		w.IR[n], w.Red[n] = ir, red
		n++
	}

	return w, nil
}

// Close closes the port.
func (s *Serial) Close() error {
	return s.port.Close()
}

var errSampleFormat = errors.New("want two comma separated counts")

func parseSample(text string) (ir, red uint32, err error) {
	fields := strings.Split(text, ",")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", errSampleFormat, text)
	}

	irCount, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("infrared count: %w", err)
	}
	redCount, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("red count: %w", err)
	}

	return uint32(irCount), uint32(redCount), nil
}
