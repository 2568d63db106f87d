// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package smart decodes ATA SMART READ DATA / READ THRESHOLDS attribute
// tables and renders each attribute's raw bytes according to a drivedb
// annotation, mirroring smartmontools' ata_get_attr_raw_value.
package smart

// Attribute is one decoded SMART attribute table entry. Id 0 never appears
// (it marks an absent slot and is skipped during decode). Meta is nil until
// a drivedb lookup annotates it; Value/Worst come back as ok=false when the
// annotation's byte-order string claims those positions for the raw value.
type Attribute struct {
	ID     byte
	data   [12]byte // full 12-byte table entry, including id
	Thresh *byte

	Meta *Meta
}

// Meta is the subset of a drivedb preset an Attribute needs to render:
// display name, raw-value format, and the byte-order permutation string.
type Meta struct {
	Name      string
	Format    string
	ByteOrder string
}

// flags returns the little-endian 16-bit status-flags field (bytes 1-2 of
// the table entry).
func (a *Attribute) flags() uint16 {
	return uint16(a.data[1]) | uint16(a.data[2])<<8
}

// PreFail reports whether failure is predicted imminently (within 24h) as
// opposed to the attribute merely indicating exceeded design life.
func (a *Attribute) PreFail() bool        { return a.flags()&(1<<0) != 0 }
func (a *Attribute) Online() bool         { return a.flags()&(1<<1) != 0 }
func (a *Attribute) Performance() bool    { return a.flags()&(1<<2) != 0 }
func (a *Attribute) ErrorRate() bool      { return a.flags()&(1<<3) != 0 }
func (a *Attribute) EventCount() bool     { return a.flags()&(1<<4) != 0 }
func (a *Attribute) SelfPreserving() bool { return a.flags()&(1<<5) != 0 }

func (a *Attribute) usesByteInRaw(c byte) bool {
	return a.Meta != nil && containsByte(a.Meta.ByteOrder, c)
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}

// Value is the normalized current-value byte, or ok=false if the drivedb
// annotation's byte-order string repurposes that position for the raw
// value.
func (a *Attribute) Value() (v byte, ok bool) {
	if a.usesByteInRaw('v') {
		return 0, false
	}
	return a.data[3], true
}

// Worst is the normalized worst-ever-value byte, with the same ok=false
// convention as Value.
func (a *Attribute) Worst() (v byte, ok bool) {
	if a.usesByteInRaw('w') {
		return 0, false
	}
	return a.data[4], true
}

// Name returns the drivedb display name for this attribute, or "" if
// unannotated.
func (a *Attribute) Name() string {
	if a.Meta == nil {
		return ""
	}
	return a.Meta.Name
}

// Annotate attaches drivedb-sourced render metadata looked up by the
// caller for this attribute's id.
func (a *Attribute) Annotate(m *Meta) { a.Meta = m }

// ParseThresholds decodes a SMART READ THRESHOLDS response into a map of
// attribute id to threshold byte. Entries with id 0 are skipped.
func ParseThresholds(data []byte) map[byte]byte {
	out := make(map[byte]byte)
	if len(data) < 2 {
		return out
	}
	body := data[2:]
	for i := 0; i+12 <= len(body) && i/12 < 30; i += 12 {
		entry := body[i : i+12]
		if entry[0] == 0 {
			continue
		}
		out[entry[0]] = entry[1]
	}
	return out
}

// ParseAttributes decodes a SMART READ DATA response into the list of
// populated attributes, attaching the matching threshold from threshs (the
// result of ParseThresholds against the paired READ THRESHOLDS response, if
// available). Entries with id 0 are skipped; if a drive repeats an id, the
// last occurrence wins.
func ParseAttributes(data []byte, threshs map[byte]byte) []*Attribute {
	if len(data) < 2 {
		return nil
	}

	byID := make(map[byte]*Attribute)
	var order []byte

	body := data[2:]
	for i := 0; i+12 <= len(body) && i/12 < 30; i += 12 {
		entry := body[i : i+12]
		id := entry[0]
		if id == 0 {
			continue
		}

		a := &Attribute{ID: id}
		copy(a.data[:], entry)
		if t, ok := threshs[id]; ok {
			tt := t
			a.Thresh = &tt
		}

		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = a
	}

	out := make([]*Attribute, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}
