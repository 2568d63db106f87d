// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package identify decodes the 512-byte response to ATA IDENTIFY DEVICE into
// a structured record: model/serial/firmware strings, capacity, sector
// geometry, rotational rate, and the Ternary feature-support/enabled flags.
package identify

import (
	"github.com/blockdev-tools/smart/internal/byteutil"
)

// Ternary is the supported/disabled/enabled tri-state ATA IDENTIFY DEVICE
// reports for optional features: a "supported" bit combined with a separate
// "enabled" bit.
type Ternary int

const (
	Unsupported Ternary = iota
	Disabled
	Enabled
)

func (t Ternary) String() string {
	switch t {
	case Enabled:
		return "supported, enabled"
	case Disabled:
		return "supported, disabled"
	default:
		return "not supported"
	}
}

// Rotation reports a drive's rotational rate: unknown, non-rotating (SSD),
// or a spindle speed in RPM.
type Rotation struct {
	NonRotating bool
	Unknown     bool
	RPM         uint16 // valid only when !NonRotating && !Unknown
}

// Id is the decoded ATA IDENTIFY DEVICE response.
type Id struct {
	Serial   string
	Firmware string
	Model    string

	Capacity      uint64
	SectorSizeLog uint32
	SectorSizePhy uint32

	Rotation Rotation

	GPLoggingSupported bool
	Addr48Supported    bool

	WriteCache    Ternary
	ReadLookAhead Ternary
	HPA           Ternary
	APM           Ternary
	AAM           Ternary
	Security      Ternary
	SMART         Ternary

	CommandsSupported        map[string]bool
	PowerManagementSupported bool

	WWN *WWN
}

// WWN is a decoded IEEE World Wide Name (IDENTIFY words 108-111): a NAA
// (Name Address Authority) identifier type, the IEEE-assigned company OUI,
// and a vendor-unique id making the full name unique per device.
type WWN struct {
	NAA      byte
	OUI      uint32
	UniqueID uint64
}

// ATAVersion returns the highest ATA major version the IDENTIFY DEVICE
// response's word 80 bitmask reports supported, or 0 if the word is
// unset/reserved (0x0000/0xffff).
func ATAVersion(data []byte) int {
	words := wordsFromBytes(data)
	w := words[80]
	if w == 0x0000 || w == 0xffff {
		return 0
	}
	highest := 0
	for v := 1; v <= 15; v++ {
		if w&(1<<uint(v)) != 0 {
			highest = v
		}
	}
	return highest
}

// ATAMinorVersionString looks up the IDENTIFY DEVICE response's word 81
// (the ATA minor version/revision code) in the table ATA-3 through ACS-4
// define for it, or "" if the word names no assigned revision.
func ATAMinorVersionString(data []byte) string {
	words := wordsFromBytes(data)
	return ataMinorVersions[words[81]]
}

// Table 10 of X3T13/2008D (ATA-3) Revision 7b, January 27, 1997
// Table 28 of T13/1410D (ATA/ATAPI-6) Revision 3b, February 26, 2002
// Table 31 of T13/1699-D (ATA8-ACS) Revision 6a, September 6, 2008
// Table 46 of T13/BSR INCITS 529 (ACS-4) Revision 08, April 28, 2015
var ataMinorVersions = map[uint16]string{
	0x0001: "ATA-1 X3T9.2/781D prior to revision 4",
	0x0002: "ATA-1 published, ANSI X3.221-1994",
	0x0003: "ATA-1 X3T9.2/781D revision 4",
	0x0004: "ATA-2 published, ANSI X3.279-1996",
	0x0005: "ATA-2 X3T10/948D prior to revision 2k",
	0x0006: "ATA-3 X3T10/2008D revision 1",
	0x0007: "ATA-2 X3T10/948D revision 2k",
	0x0008: "ATA-3 X3T10/2008D revision 0",
	0x0009: "ATA-2 X3T10/948D revision 3",
	0x000a: "ATA-3 published, ANSI X3.298-1997",
	0x000b: "ATA-3 X3T10/2008D revision 6",
	0x000c: "ATA-3 X3T13/2008D revision 7 and 7a",
	0x000d: "ATA/ATAPI-4 X3T13/1153D revision 6",
	0x000e: "ATA/ATAPI-4 T13/1153D revision 13",
	0x000f: "ATA/ATAPI-4 X3T13/1153D revision 7",
	0x0010: "ATA/ATAPI-4 T13/1153D revision 18",
	0x0011: "ATA/ATAPI-4 T13/1153D revision 15",
	0x0012: "ATA/ATAPI-4 published, ANSI NCITS 317-1998",
	0x0013: "ATA/ATAPI-5 T13/1321D revision 3",
	0x0014: "ATA/ATAPI-4 T13/1153D revision 14",
	0x0015: "ATA/ATAPI-5 T13/1321D revision 1",
	0x0016: "ATA/ATAPI-5 published, ANSI NCITS 340-2000",
	0x0017: "ATA/ATAPI-4 T13/1153D revision 17",
	0x0018: "ATA/ATAPI-6 T13/1410D revision 0",
	0x0019: "ATA/ATAPI-6 T13/1410D revision 3a",
	0x001a: "ATA/ATAPI-7 T13/1532D revision 1",
	0x001b: "ATA/ATAPI-6 T13/1410D revision 2",
	0x001c: "ATA/ATAPI-6 T13/1410D revision 1",
	0x001d: "ATA/ATAPI-7 published, ANSI INCITS 397-2005",
	0x001e: "ATA/ATAPI-7 T13/1532D revision 0",
	0x001f: "ACS-3 T13/2161-D revision 3b",
	0x0021: "ATA/ATAPI-7 T13/1532D revision 4a",
	0x0022: "ATA/ATAPI-6 published, ANSI INCITS 361-2002",
	0x0027: "ATA8-ACS T13/1699-D revision 3c",
	0x0028: "ATA8-ACS T13/1699-D revision 6",
	0x0029: "ATA8-ACS T13/1699-D revision 4",
	0x0031: "ACS-2 T13/2015-D revision 2",
	0x0033: "ATA8-ACS T13/1699-D revision 3e",
	0x0039: "ATA8-ACS T13/1699-D revision 4c",
	0x0042: "ATA8-ACS T13/1699-D revision 3f",
	0x0052: "ATA8-ACS T13/1699-D revision 3b",
	0x005e: "ACS-4 T13/BSR INCITS 529 revision 5",
	0x006d: "ACS-3 T13/2161-D revision 5",
	0x0082: "ACS-2 published, ANSI INCITS 482-2012",
	0x0107: "ATA8-ACS T13/1699-D revision 2d",
	0x010a: "ACS-3 published, ANSI INCITS 522-2014",
	0x0110: "ACS-2 T13/2015-D revision 3",
	0x011b: "ACS-3 T13/2161-D revision 4",
}

// commandsSupportedBits names the general-purpose-feature-set bits of
// words 82-84 (the "commands and feature sets supported" fields) this
// package exposes as a flat name→supported set.
var commandsSupportedBits = []struct {
	word int
	bit  uint
	name string
}{
	{82, 5, "write_cache"},
	{82, 6, "look_ahead"},
	{82, 10, "hpa"},
	{83, 10, "48bit_addressing"},
	{84, 0, "smart_error_logging"},
	{84, 1, "smart_self_test"},
	{84, 4, "streaming"},
	{84, 5, "gp_logging"},
	{84, 8, "trusted_computing"},
}

func commandsSupported(words []uint16) map[string]bool {
	out := make(map[string]bool, len(commandsSupportedBits))
	for _, b := range commandsSupportedBits {
		out[b.name] = isSet(words[b.word], b.bit)
	}
	return out
}

// parseWWN decodes IDENTIFY words 108-111 into a World Wide Name, or nil if
// no WWN is present (all-zero words).
func parseWWN(words []uint16) *WWN {
	if words[108] == 0 && words[109] == 0 && words[110] == 0 && words[111] == 0 {
		return nil
	}

	w108 := uint64(words[108])
	naa := byte(w108 >> 12)
	oui := uint32(w108&0x0fff)<<12 | uint32(words[109])>>4

	uniqueID := uint64(words[109]&0xf)<<32 | uint64(words[110])<<16 | uint64(words[111])

	return &WWN{NAA: naa, OUI: oui, UniqueID: uniqueID}
}

func isSet(word uint16, bit uint) bool { return word&(1<<bit) != 0 }

func ternary(words []uint16, wordSup, bitSup, wordEnabled, bitEnabled int) Ternary {
	if !isSet(words[wordSup], uint(bitSup)) {
		return Unsupported
	}
	if isSet(words[wordEnabled], uint(bitEnabled)) {
		return Enabled
	}
	return Disabled
}

// wordsFromBytes interprets data (a 512-byte IDENTIFY DEVICE response) as
// 256 16-bit words loaded in host byte order: the byte at the lower address
// is the low byte on little-endian hosts and the high byte on big-endian
// ones.
func wordsFromBytes(data []byte) []uint16 {
	words := make([]uint16, len(data)/2)
	for i := range words {
		if byteutil.IsLittleEndian {
			words[i] = uint16(data[2*i+1])<<8 | uint16(data[2*i])
		} else {
			words[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
		}
	}
	return words
}

// readString decodes the word range [start, end] (inclusive) as a
// byte-swapped ASCII string and trims trailing spaces/NULs, the layout ATA
// uses for the model/serial/firmware IDENTIFY fields.
func readString(words []uint16, start, end int) string {
	b := make([]byte, 0, (end-start+1)*2)
	for i := start; i <= end; i++ {
		b = append(b, byte(words[i]>>8), byte(words[i]&0xff))
	}
	return byteutil.TrimASCII(b)
}

// Parse decodes a 512-byte ATA IDENTIFY DEVICE response.
func Parse(data []byte) Id {
	words := wordsFromBytes(data)

	sectors28 := uint64(words[61])<<16 | uint64(words[60])
	sectors48 := uint64(words[103])<<48 | uint64(words[102])<<32 | uint64(words[101])<<16 | uint64(words[100])

	// Word 106 is valid only when bit 14 is set and bit 15 is clear.
	sectorSizeValid := words[106]&((1<<14)|(1<<15)) == (1 << 14)

	var sectorSizeLog uint32
	if sectorSizeValid {
		if words[106]&(1<<12) != 0 {
			sectorSizeLog = (uint32(words[118])<<16 | uint32(words[117])) << 1
		} else {
			sectorSizeLog = 256 << 1
		}
	} else {
		sectorSizeLog = 512
	}

	var sectorSizePhy uint32
	if sectorSizeValid && words[106]&(1<<13) != 0 {
		sectorSizePhy = sectorSizeLog << (words[106] & 0xf)
	} else {
		sectorSizePhy = sectorSizeLog
	}

	sectors := sectors28
	if sectors48 > 0 {
		sectors = sectors48
	}

	var rot Rotation
	switch {
	case words[217] == 0x0001:
		rot.NonRotating = true
	case words[217] == 0x0000 || words[217] == 0xffff || (words[217] >= 0x0002 && words[217] <= 0x0400):
		rot.Unknown = true
	default:
		rot.RPM = words[217]
	}

	return Id{
		Serial:   readString(words, 10, 19),
		Firmware: readString(words, 23, 26),
		Model:    readString(words, 27, 46),

		Capacity:      uint64(sectorSizeLog) * sectors,
		SectorSizeLog: sectorSizeLog,
		SectorSizePhy: sectorSizePhy,

		Rotation: rot,

		GPLoggingSupported: isSet(words[84], 5),
		Addr48Supported:    isSet(words[83], 10),

		WriteCache:    ternary(words, 82, 5, 85, 5),
		ReadLookAhead: ternary(words, 82, 6, 85, 6),
		HPA:           ternary(words, 82, 10, 85, 10),
		APM:           ternary(words, 83, 3, 86, 3),
		AAM:           ternary(words, 83, 9, 86, 9),
		Security:      ternary(words, 82, 1, 85, 1),
		SMART:         ternary(words, 82, 0, 85, 0),

		CommandsSupported:        commandsSupported(words),
		PowerManagementSupported: isSet(words[82], 3),

		WWN: parseWWN(words),
	}
}
