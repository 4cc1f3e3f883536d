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
	"fmt"
	"os"
	"strings"

	"github.com/proxin187/cortex-m4/internal/m4"
)

// loadImage loads path into p, dispatching on extension: ".hex" goes
// through the Intel HEX parser, anything else is tried as ELF (the ELF
// magic is self-describing; HEX is the one format that needs the name
// to disambiguate from a raw binary).
func loadImage(p *m4.Processor, path string) error {
	if strings.EqualFold(getExt(path), ".hex") {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return p.LoadHex(f)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return p.LoadELF(f)
}

func getExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
