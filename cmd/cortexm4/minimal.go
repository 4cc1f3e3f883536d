// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/proxin187/cortex-m4/internal/m4"
)

// runMinimal runs an image headless for a bounded number of steps,
// grounded on the teacher's -max-cycles flag and its exit-statistics
// block in main.go.
func runMinimal(args []string) {
	fs := flag.NewFlagSet("minimal", flag.ExitOnError)
	steps := fs.Uint64("steps", 1000, "stop after N steps (0 = unlimited)")
	traceFile := fs.String("trace", "", "write execution trace to file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s minimal [options] <image-file>\n", os.Args[0])
		fs.PrintDefaults()
		os.Exit(1)
	}
	path := fs.Arg(0)

	p := m4.NewProcessor()

	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		p.Tracer = m4.NewTracer(f)
	}

	if err := loadImage(p, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}
	p.Reset()

	width := termWidth()
	start := time.Now()
	var n uint64
	for *steps == 0 || n < *steps {
		p.Step()
		n++
		if n%10000 == 0 {
			line := fmt.Sprintf("\rstep %d  pc=0x%08X", n, p.Regs.PCStored())
			if len(line) > width {
				line = line[:width]
			}
			fmt.Fprint(os.Stderr, line)
		}
	}
	if n >= 10000 {
		fmt.Fprint(os.Stderr, "\r\n")
	}
	elapsed := time.Since(start)

	snap := p.Snapshot()
	fmt.Fprintf(os.Stderr, "========================================\n")
	fmt.Fprintf(os.Stderr, "Execution completed\n")
	fmt.Fprintf(os.Stderr, "Steps: %d\n", n)
	fmt.Fprintf(os.Stderr, "Time: %v\n", elapsed.Round(time.Millisecond))
	if elapsed.Seconds() > 0 {
		mhz := (float64(n) / 1_000_000.0) / elapsed.Seconds()
		fmt.Fprintf(os.Stderr, "Speed: %.3f MHz\n", mhz)
	}
	fmt.Fprintf(os.Stderr, "Mode: %s  PC: 0x%08X  PSR: 0x%08X\n", snap.Mode, snap.Regs[m4.SlotPC], snap.PSR)
}
