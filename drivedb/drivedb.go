// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package drivedb

import (
	"regexp"
	"sort"
	"strings"

	"github.com/blockdev-tools/smart/identify"
)

// DB is a loaded drivedb.h-style database, ready to match drive model and
// firmware strings against its entries. Model and firmware regexes are
// precompiled at load time; a fresh RegexSet-equivalent compile per lookup
// would dominate match cost for anything issuing more than a couple of
// lookups.
type DB struct {
	entries []Entry

	// defaultEntry is the first entry whose family is "DEFAULT", applied to
	// every drive regardless of match. Additional DEFAULT entries (possible
	// when multiple database files are loaded) are ignored, matching
	// smartmontools' own single-default convention.
	defaultEntry *Entry

	modelRegexes    []*regexp.Regexp
	firmwareRegexes []*regexp.Regexp
}

// Load parses src and compiles a DB from it. USB:-prefixed model fields are
// dropped: this package does not support USB bridge matching.
func Load(src string) (*DB, error) {
	raw, err := ParseDatabase(src)
	if err != nil {
		return nil, err
	}
	return buildDB(raw)
}

// buildDB compiles a DB from an already-parsed entry list: USB:-prefixed
// models are dropped, DEFAULT-family entries are partitioned into the
// fallback slot, and model/firmware regexes are precompiled.
func buildDB(raw []Entry) (*DB, error) {
	db := &DB{}

	for _, e := range raw {
		if strings.HasPrefix(e.Model, "USB:") {
			continue
		}
		if e.Family == "DEFAULT" {
			if db.defaultEntry == nil {
				ent := e
				db.defaultEntry = &ent
			}
			continue
		}
		db.entries = append(db.entries, e)
	}

	db.modelRegexes = make([]*regexp.Regexp, len(db.entries))
	db.firmwareRegexes = make([]*regexp.Regexp, len(db.entries))
	for i, e := range db.entries {
		re, err := regexp.Compile("^(?:" + e.Model + ")$")
		if err != nil {
			return nil, err
		}
		db.modelRegexes[i] = re

		if e.Firmware == "" {
			db.firmwareRegexes[i] = nil
			continue
		}
		re, err = regexp.Compile("^(?:" + e.Firmware + ")$")
		if err != nil {
			return nil, err
		}
		db.firmwareRegexes[i] = re
	}

	return db, nil
}

// find returns the lowest-indexed entry whose model and firmware regexes
// both match, consistent with smartmontools' lookup_drive: first match
// wins, not best match.
func (db *DB) find(model, firmware string) *Entry {
	var matched []int
	for i, re := range db.modelRegexes {
		if !re.MatchString(model) {
			continue
		}
		if fwRe := db.firmwareRegexes[i]; fwRe != nil && !fwRe.MatchString(firmware) {
			continue
		}
		matched = append(matched, i)
	}
	if len(matched) == 0 {
		return nil
	}
	sort.Ints(matched)
	return &db.entries[matched[0]]
}

// DriveMeta is drive-related data that cannot be queried from the drive
// itself: its model family, any applicable firmware warning, and the
// resolved set of SMART attribute presets.
type DriveMeta struct {
	Family  string
	Warning string

	presets []Attribute
}

// RenderMeta matches id's model and firmware against db, merging the
// default entry's presets, the matched entry's presets (if any), and
// extraAttributes (typically user-supplied `-v` overrides, applied last so
// they take precedence), then drops presets whose DriveType doesn't match
// id's actual rotation status.
func (db *DB) RenderMeta(id identify.Id, extraAttributes []Attribute) DriveMeta {
	var m DriveMeta

	if db.defaultEntry != nil {
		m.presets = append(m.presets, ParsePresetString(db.defaultEntry.Presets)...)
	}

	if entry := db.find(id.Model, id.Firmware); entry != nil {
		m.presets = append(m.presets, ParsePresetString(entry.Presets)...)
		m.Family = entry.Family
		m.Warning = entry.Warning
	}

	m.presets = append(m.presets, extraAttributes...)
	m.presets = filterPresets(id, m.presets)

	return m
}

// filterPresets drops presets whose DriveType doesn't match the drive's
// actual rotation status: HDD presets on a non-rotating drive, SSD presets
// on a rotating one, and any drive-type-specific preset when rotation
// status itself is unknown.
func filterPresets(id identify.Id, presets []Attribute) []Attribute {
	var driveType DriveType
	known := true
	switch {
	case id.Rotation.NonRotating:
		driveType = SSD
	case id.Rotation.Unknown:
		known = false
	default:
		driveType = HDD
	}

	out := presets[:0:0]
	for _, p := range presets {
		switch {
		case p.DriveType == AnyDrive:
			out = append(out, p)
		case !known:
			// drive-type-specific preset, unknown actual type: drop.
		case p.DriveType == driveType:
			out = append(out, p)
		}
	}
	return out
}

// RenderAttribute renders the attribute description applicable to id,
// folding every matching preset in m left to right. Attributes are never
// looked up eagerly because a "-v N,..." entry applies to every id, and a
// later entry may update only the format, leaving a previously set name
// intact.
func (m DriveMeta) RenderAttribute(id byte) *Attribute {
	return renderAttribute(m.presets, id)
}
