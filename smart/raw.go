// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package smart

import "fmt"

// RawKind tags which shape a rendered Raw value takes, following the
// smartmontools raw-value format families.
type RawKind int

const (
	RawKindDefault48 RawKind = iota // raw48 / hex48 / any unrecognized format
	RawKind8
	RawKind16
	RawKind64
	RawKind16Opt16
	RawKind16Avg16
	RawKind24Opt8
	RawKind24Div24
	RawKind24Div32
	RawKindSeconds
	RawKindMinutes
	RawKindHoursMilliseconds
	RawKindCelsius
	RawKindCelsiusMinMax
)

// Raw is the decoded, rendered form of an attribute's 6 raw payload bytes.
// Exactly the fields relevant to Kind are meaningful.
type Raw struct {
	Kind RawKind

	U64   uint64
	Bytes []byte
	U16s  []uint16

	Value   uint16 // RawKind16Avg16, RawKind16Opt16
	Average uint16 // RawKind16Avg16
	Opt16   []uint16
	Opt8    []byte

	Div1, Div2 uint32 // RawKind24Div24, RawKind24Div32

	Hours        uint32 // RawKindHoursMilliseconds
	Milliseconds uint32 // RawKindHoursMilliseconds

	Celsius       float32 // RawKindCelsius
	CelsiusCur    byte    // RawKindCelsiusMinMax
	CelsiusMin    byte
	CelsiusMax    byte
}

func (r Raw) String() string {
	switch r.Kind {
	case RawKind8:
		return joinBytes(r.Bytes)
	case RawKind16:
		return joinU16s(r.U16s)
	case RawKind16Avg16:
		return fmt.Sprintf("%d (avg: %d)", r.Value, r.Average)
	case RawKind16Opt16:
		if len(r.Opt16) == 0 {
			return fmt.Sprintf("%d", r.Value)
		}
		return fmt.Sprintf("%d (%s)", r.Value, joinU16s(r.Opt16))
	case RawKind24Opt8:
		if len(r.Opt8) == 0 {
			return fmt.Sprintf("%d", r.Div1)
		}
		return fmt.Sprintf("%d (%s)", r.Div1, joinBytes(r.Opt8))
	case RawKind24Div24, RawKind24Div32:
		return fmt.Sprintf("%d/%d", r.Div1, r.Div2)
	case RawKindSeconds:
		d := r.U64 / 86400
		h := (r.U64 / 3600) % 24
		m := (r.U64 / 60) % 60
		s := r.U64 % 60
		return fmt.Sprintf("%dd %02d:%02d:%02d", d, h, m, s)
	case RawKindMinutes:
		h := r.U64 / 60
		m := r.U64 % 60
		d := h / 24
		h = h % 24
		return fmt.Sprintf("%dd %02d:%02d", d, h, m)
	case RawKindHoursMilliseconds:
		s := float64(r.Milliseconds) / 1000
		m := uint32(s) / 60
		s -= float64(m) * 60
		d := r.Hours / 24
		h := r.Hours % 24
		return fmt.Sprintf("%dd %02d:%02d:%05.2f", d, h, m, s)
	case RawKindCelsius:
		return fmt.Sprintf("%.1f°C", r.Celsius)
	case RawKindCelsiusMinMax:
		return fmt.Sprintf("%d°C (min: %d°C, max: %d°C)", r.CelsiusCur, r.CelsiusMin, r.CelsiusMax)
	default:
		return fmt.Sprintf("%d", r.U64)
	}
}

func joinBytes(b []byte) string {
	s := ""
	for i, v := range b {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d", v)
	}
	return s
}

func joinU16s(b []uint16) string {
	s := ""
	for i, v := range b {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d", v)
	}
	return s
}

// read packs the first bits/8 bytes of data into a big-endian unsigned value,
// treating data[0] as the most significant byte.
func read(data []byte, bits int) uint64 {
	var out uint64
	for i := 0; i < bits/8; i++ {
		out <<= 8
		out += uint64(data[i])
	}
	return out
}

// reorder is a selector, not a shuffle: each character of byteOrder names
// which source byte of the full 12-byte table entry lands at this output
// position. '0'..'5' are the six raw payload bytes (entry[5..10]), 'v'/'w'
// are the current-value/worst-value bytes, 'r' is the reserved byte.
// Unrecognized characters produce a zero byte.
func reorder(entry [12]byte, byteOrder string) []byte {
	out := make([]byte, len(byteOrder))
	for i := 0; i < len(byteOrder); i++ {
		switch byteOrder[i] {
		case 'v':
			out[i] = entry[3]
		case 'w':
			out[i] = entry[4]
		case '0':
			out[i] = entry[5]
		case '1':
			out[i] = entry[6]
		case '2':
			out[i] = entry[7]
		case '3':
			out[i] = entry[8]
		case '4':
			out[i] = entry[9]
		case '5':
			out[i] = entry[10]
		case 'r':
			out[i] = entry[11]
		default:
			out[i] = 0
		}
	}
	return out
}

// padLeft8 left-pads s with '_' (a reorder no-op marker) to 8 characters,
// the way smartmontools widens a 6-character byte order string to read a
// 64-bit value.
func padLeft8(s string) string {
	for len(s) < 8 {
		s = "_" + s
	}
	return s
}

// RenderRaw renders a's raw payload according to its drivedb annotation (or
// the default byte order "543210" / format raw48 if unannotated).
func RenderRaw(a *Attribute) Raw {
	format, byteOrder := "raw48", "543210"
	if a.Meta != nil {
		format, byteOrder = a.Meta.Format, a.Meta.ByteOrder
	}

	raw48 := reorder(a.data, byteOrder)
	raw64 := reorder(a.data, padLeft8(byteOrder))

	switch format {
	case "raw8":
		return Raw{Kind: RawKind8, Bytes: raw48}
	case "raw16":
		u16s := make([]uint16, 0, len(raw48)/2)
		for i := 0; i+2 <= len(raw48); i += 2 {
			u16s = append(u16s, uint16(read(raw48[i:], 16)))
		}
		return Raw{Kind: RawKind16, U16s: u16s}
	case "raw56", "hex56":
		return Raw{Kind: RawKind64, U64: read(raw64[1:8], 56)}
	case "raw64", "hex64":
		return Raw{Kind: RawKind64, U64: read(raw64, 64)}
	case "raw16(avg16)":
		return Raw{
			Kind:    RawKind16Avg16,
			Value:   uint16(read(raw48[0:2], 16)),
			Average: uint16(read(raw48[2:4], 16)),
		}
	case "raw16(raw16)":
		x := uint16(read(raw48[0:2], 16))
		var opt []uint16
		var maxv uint16
		for i := 2; i+2 <= len(raw48); i += 2 {
			v := uint16(read(raw48[i:], 16))
			opt = append(opt, v)
			if v > maxv {
				maxv = v
			}
		}
		if maxv == 0 {
			opt = nil
		}
		return Raw{Kind: RawKind16Opt16, Value: x, Opt16: opt}
	case "raw24(raw8)":
		x := uint32(read(raw48[3:6], 24))
		opt := []byte{raw48[0], raw48[1], raw48[2]}
		var maxv byte
		for _, v := range opt {
			if v > maxv {
				maxv = v
			}
		}
		if maxv == 0 {
			opt = nil
		}
		return Raw{Kind: RawKind24Opt8, Div1: x, Opt8: opt}
	case "raw24/raw24":
		return Raw{
			Kind: RawKind24Div24,
			Div1: uint32(read(raw48[0:3], 24)),
			Div2: uint32(read(raw48[3:6], 24)),
		}
	case "raw24/raw32":
		return Raw{
			Kind: RawKind24Div32,
			Div1: uint32(read(raw64[1:4], 24)),
			Div2: uint32(read(raw64[4:8], 32)),
		}
	case "sec2hour":
		return Raw{Kind: RawKindSeconds, U64: read(raw48, 48)}
	case "min2hour":
		return Raw{Kind: RawKindMinutes, U64: read(raw48, 48)}
	case "halfmin2hour":
		return Raw{Kind: RawKindSeconds, U64: read(raw48, 48) * 30}
	case "msec24hour32":
		return Raw{
			Kind:         RawKindHoursMilliseconds,
			Hours:        uint32(read(raw64[4:8], 32)),
			Milliseconds: uint32(read(raw64[1:4], 24)),
		}
	case "temp10x":
		return Raw{Kind: RawKindCelsius, Celsius: float32(read(raw48[4:6], 16)) / 10}
	case "tempminmax":
		return renderTempMinMax(raw48)
	default:
		return Raw{Kind: RawKindDefault48, U64: read(raw48, 48)}
	}
}

// renderTempMinMax matches the six permuted bytes against the patterns
// smartmontools recognizes for the 'tempminmax' format, falling back to the
// default raw48 interpretation for anything else.
func renderTempMinMax(raw48 []byte) Raw {
	b0, b1, b2, b3, b4, t := raw48[0], raw48[1], raw48[2], raw48[3], raw48[4], raw48[5]

	minOf := func(a, b byte) byte {
		if a < b {
			return a
		}
		return b
	}
	maxOf := func(a, b byte) byte {
		if a > b {
			return a
		}
		return b
	}

	switch {
	case b0 == 0 && b1 == 0 && b2 == 0 && b3 == 0 && b4 == 0:
		return Raw{Kind: RawKindCelsius, Celsius: float32(t)}
	case b0 == 0 && b1 == 0 && b2 == 0:
		return Raw{Kind: RawKindCelsiusMinMax, CelsiusCur: t, CelsiusMin: minOf(b3, b4), CelsiusMax: maxOf(b3, b4)}
	case b0 == 0 && b1 == 0 && b4 == 0:
		return Raw{Kind: RawKindCelsiusMinMax, CelsiusCur: t, CelsiusMin: minOf(b2, b3), CelsiusMax: maxOf(b2, b3)}
	case b0 == 0 && b2 == 0 && b4 == 0:
		return Raw{Kind: RawKindCelsiusMinMax, CelsiusCur: t, CelsiusMin: minOf(b1, b3), CelsiusMax: maxOf(b1, b3)}
	default:
		return Raw{Kind: RawKindDefault48, U64: read(raw48, 48)}
	}
}
