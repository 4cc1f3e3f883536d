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

// Command cortexm4 loads an ELF or Intel HEX firmware image into the
// emulator and either single-steps it through a terminal UI or runs it
// headless for a bounded number of steps.
package main

import (
	"fmt"
	"os"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "interactive":
		runInteractive(os.Args[2:])
	case "minimal":
		runMinimal(os.Args[2:])
	case "-version", "--version":
		fmt.Printf("cortexm4 v%s\n", version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options] <image-file>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  interactive <path>   single-step the image in a terminal UI\n")
	fmt.Fprintf(os.Stderr, "  minimal <path>       run the image headless for a bounded step count\n")
}
