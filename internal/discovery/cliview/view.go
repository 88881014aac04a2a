// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cliview renders an optional, colorized live progress view on an
// interactive terminal. It is purely cosmetic: the process behaves
// identically with or without it, and it is automatically suppressed when
// stdout is not a TTY or when the caller passes quiet=true.
package cliview

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"domainsearch/internal/discovery/core"
)

// Enabled reports whether a live view should be rendered, mirroring the
// teacher's preference for explicit TTY detection (fatih/color +
// mattn/go-isatty) over assuming an interactive terminal.
func Enabled(quiet bool) bool {
	if quiet {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Run renders a live single-line counters view (plus a bounded progress bar
// when prog has a known total) until done is closed. It is styled after
// etalazz-vsa's telemetry/churn ANSI live-rendering loop: a ticker, a
// snapshot read, and an in-place redraw.
func Run(done <-chan struct{}, prog *core.Progress) {
	var bar *progressbar.ProgressBar
	total := prog.TotalPlanned()
	if total > 0 {
		bar = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription("checked"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
		)
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	speedColor := color.New(color.FgGreen)
	etaColor := color.New(color.FgYellow)

	for {
		select {
		case <-done:
			fmt.Println()
			return
		case <-ticker.C:
			enq, chk, fnd, elapsed := prog.Snapshot()
			speed := 0.0
			if elapsed.Seconds() > 0 {
				speed = float64(chk) / elapsed.Seconds()
			}
			if bar != nil {
				_ = bar.Set64(chk)
			}
			fmt.Printf("\renqueued=%d checked=%d found=%d %s %s",
				enq, chk, fnd,
				speedColor.Sprintf("%.1f/s", speed),
				etaColor.Sprintf("elapsed=%s", elapsed.Round(time.Second)),
			)
		}
	}
}
