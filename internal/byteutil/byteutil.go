// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package byteutil collects the small binary-layout helpers shared by the
// identify, smart and scsi decoders: endianness detection, ATA string
// byte-swapping, and human-readable byte formatting.
package byteutil

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// NativeEndian is the byte order of the host this process is running on.
var NativeEndian binary.ByteOrder

// IsLittleEndian mirrors NativeEndian as a plain bool for callers that need
// to branch rather than call through the ByteOrder interface, e.g. the ATA
// word-swap load step.
var IsLittleEndian bool

func init() {
	i := uint32(1)
	b := (*[4]byte)(unsafe.Pointer(&i))
	if b[0] == 1 {
		NativeEndian = binary.LittleEndian
		IsLittleEndian = true
	} else {
		NativeEndian = binary.BigEndian
		IsLittleEndian = false
	}
}

// SwapPairs swaps the order of every second byte in-place, e.g. to convert
// the byte-swapped ASCII strings embedded in ATA IDENTIFY DEVICE words into
// their natural reading order. Returns s for chaining.
func SwapPairs(s []byte) []byte {
	for i := 0; i+1 < len(s); i += 2 {
		s[i], s[i+1] = s[i+1], s[i]
	}
	return s
}

// TrimASCII trims trailing NUL and space bytes and returns the result as a
// string, the shape every ATA identify string field needs after swapping.
func TrimASCII(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

// FormatBytes renders a byte quantity using SI decimal suffixes (KB, MB, ...)
// with three significant digits, matching smartctl's capacity formatting.
func FormatBytes(v uint64) string {
	suffixes := [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	d := uint64(1)
	i := 0

	for ; i < len(suffixes)-1; i++ {
		if v >= d*1000 {
			d *= 1000
		} else {
			break
		}
	}

	if i == 0 {
		return fmt.Sprintf("%d %s", v, suffixes[i])
	}
	return fmt.Sprintf("%.3g %s", float64(v)/float64(d), suffixes[i])
}
