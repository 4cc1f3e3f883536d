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

package m4

import "errors"

// Loader error kinds (spec §7): every failure from LoadHex/LoadELF
// wraps one of these so callers can distinguish them with errors.Is.
var (
	ErrChecksum = errors.New("checksum mismatch")
	ErrParse    = errors.New("malformed record")
	ErrEOF      = errors.New("truncated image")
	ErrKind     = errors.New("unrecognized record type")
)
