// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */


// Command pulseox estimates heart rate and SpO2 from a stream of MAX30102
// sample windows, printing one line per window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/OpenPSG/pulseox"
	"github.com/OpenPSG/pulseox/internal/config"
	"github.com/OpenPSG/pulseox/internal/monitoring"
	"github.com/OpenPSG/pulseox/source"
)

var (
	configPath = flag.String("config", "", "Path to a YAML configuration file")
	kind       = flag.String("source", "", "Window source: serial, recording or synthetic")
	device     = flag.String("device", "", "Serial device of the sensor bridge")
	path       = flag.String("path", "", "EDF capture to replay")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	if *kind != "" {
		cfg.Source.Kind = *kind
	}
	if *device != "" {
		cfg.Source.Device = *device
	}
	if *path != "" {
		cfg.Source.Path = *path
		if *kind == "" {
			cfg.Source.Kind = config.KindRecording
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if cfg.Log.Quiet {
		monitoring.SetLogger(nil)
	}

	src, err := source.New(cfg.Source)
	if err != nil {
		log.Fatalf("failed to open source: %v", err)
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, src, os.Stdout); err != nil {
		log.Printf("stopped: %v", err)
	}
}

func run(ctx context.Context, src source.Source, out io.Writer) error {
	est := pulseox.NewEstimator()

	for n := 0; ; n++ {
		w, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		res := est.Estimate(&w)
		fmt.Fprintf(out, "window=%d %s\n", n, format(res))
		if !res.HeartRateValid {
			monitoring.Logf("window %d rejected: period=%d autocorrelation=%.2f correlation=%.2f",
				n, res.Period, res.AutocorrelationRatio, res.ChannelCorrelation)
		}
	}
}

func format(res pulseox.Result) string {
	hr := "hr=--"
	if res.HeartRateValid {
		hr = fmt.Sprintf("hr=%d", res.HeartRate)
	}
	spo2 := "spo2=--"
	if res.SpO2Valid {
		spo2 = fmt.Sprintf("spo2=%.1f", res.SpO2)
	}
	return hr + " " + spo2
}
