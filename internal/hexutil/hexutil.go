// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package hexutil renders the hex dumps the command layers emit at debug log
// level (spec'd as one dump each for outgoing and incoming command bytes).
package hexutil

import (
	"fmt"
	"strings"
)

// Dump8 renders data eight bytes per line, each line prefixed with its
// starting offset, e.g. "0000: ec 01 00 ...".
func Dump8(data []byte) string {
	return dump(data, 8)
}

// Dump16 renders data sixteen bytes per line.
func Dump16(data []byte) string {
	return dump(data, 16)
}

func dump(data []byte, width int) string {
	var b strings.Builder

	for off := 0; off < len(data); off += width {
		end := off + width
		if end > len(data) {
			end = len(data)
		}

		fmt.Fprintf(&b, "%04x:", off)
		for _, c := range data[off:end] {
			fmt.Fprintf(&b, " %02x", c)
		}
		if off+width < len(data) {
			b.WriteByte('\n')
		}
	}

	return b.String()
}
