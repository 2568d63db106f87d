// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package drivedb

import (
	"fmt"
	"strconv"
	"strings"
)

// DriveType restricts an Attribute preset to spinning (HDD) or solid-state
// (SSD) drives. The zero value (unset) applies to both.
type DriveType int

const (
	AnyDrive DriveType = iota
	HDD
	SSD
)

// Attribute is a single SMART attribute render description, parsed from a
// `-v id,format[:byteorder][,name[,HDD|SSD]]` preset token.
type Attribute struct {
	// ID is nil when the description applies to every attribute ('N').
	ID        *byte
	Name      string
	HasName   bool
	Format    string
	ByteOrder string
	DriveType DriveType
}

// legacyAliases rewrites smartmontools' legacy `-v` shorthand forms to
// their canonical ID,FORMAT[:BYTEORDER][,NAME] equivalent before parsing.
var legacyAliases = map[string]string{
	"9,halfminutes":                  "9,halfmin2hour,Power_On_Half_Minutes",
	"9,minutes":                      "9,min2hour,Power_On_Minutes",
	"9,seconds":                      "9,sec2hour,Power_On_Seconds",
	"9,temp":                         "9,tempminmax,Temperature_Celsius",
	"192,emergencyretractcyclect":    "192,raw48,Emerg_Retract_Cycle_Ct",
	"193,loadunload":                 "193,raw24/raw24",
	"194,10xCelsius":                 "194,temp10x,Temperature_Celsius_x10",
	"194,unknown":                    "194,raw48,Unknown_Attribute",
	"197,increasing":                 "197,raw48,Total_Pending_Sectors",
	"198,offlinescanuncsectorct":     "198,raw48,Offline_Scan_UNC_SectCt",
	"198,increasing":                 "198,raw48,Total_Offl_Uncorrectabl",
	"200,writeerrorcount":            "200,raw48,Write_Error_Count",
	"201,detectedtacount":            "201,raw48,Detected_TA_Count",
	"220,temp":                       "220,tempminmax,Temperature_Celsius",
}

// defaultByteOrder mirrors smartmontools' ata_get_attr_raw_value default
// byte orders for formats whose natural width exceeds the basic 6-byte
// "543210".
func defaultByteOrder(format string) string {
	switch format {
	case "raw64", "hex64":
		return "543210wv"
	case "raw56", "hex56", "raw24/raw32", "msec24hour32":
		return "r543210"
	default:
		return "543210"
	}
}

// ParsePreset parses a single `-v` argument: `ID,FORMAT[:BYTEORDER][,NAME[,(HDD|SSD)]]`,
// where ID is a decimal byte or the literal "N" (applies to all attributes).
// Recognized legacy forms (`9,minutes`, `194,10xCelsius`, ...) are rewritten
// to their canonical form first.
func ParsePreset(s string) (Attribute, error) {
	if canon, ok := legacyAliases[s]; ok {
		s = canon
	}

	fields := strings.Split(s, ",")
	if len(fields) < 2 {
		return Attribute{}, fmt.Errorf("drivedb: malformed attribute preset %q", s)
	}

	var attr Attribute

	if fields[0] == "N" {
		attr.ID = nil
	} else {
		n, err := strconv.ParseUint(fields[0], 10, 8)
		if err != nil {
			return Attribute{}, fmt.Errorf("drivedb: invalid attribute id in %q: %w", s, err)
		}
		id := byte(n)
		attr.ID = &id
	}

	formatField := fields[1]
	format, byteOrder, hasByteOrder := formatField, "", false
	if idx := strings.IndexByte(formatField, ':'); idx >= 0 {
		format, byteOrder, hasByteOrder = formatField[:idx], formatField[idx+1:], true
	}
	attr.Format = format
	if hasByteOrder {
		attr.ByteOrder = byteOrder
	} else {
		attr.ByteOrder = defaultByteOrder(format)
	}

	if len(fields) >= 3 {
		attr.Name = fields[2]
		attr.HasName = true
	}
	if len(fields) >= 4 {
		switch fields[3] {
		case "HDD":
			attr.DriveType = HDD
		case "SSD":
			attr.DriveType = SSD
		default:
			return Attribute{}, fmt.Errorf("drivedb: invalid drive type %q in %q", fields[3], s)
		}
	}

	return attr, nil
}

// ParsePresetString parses the whitespace-separated `-v ARG` token stream a
// drivedb.h entry's presets field (or a user-supplied command line) carries,
// ignoring any other option. Malformed `-v` arguments are skipped rather
// than failing the whole entry, matching smartctl's tolerant behavior
// towards unparseable drivedb entries.
func ParsePresetString(s string) []Attribute {
	tokens := strings.Fields(s)
	var out []Attribute

	for i := 0; i < len(tokens); i++ {
		if tokens[i] != "-v" || i+1 >= len(tokens) {
			continue
		}
		if attr, err := ParsePreset(tokens[i+1]); err == nil {
			out = append(out, attr)
		}
		i++
	}

	return out
}

// renderAttribute folds presets left-to-right for the queried id: entries
// whose ID is nil (applies to all) or equal to id participate; later
// entries overwrite Format/ByteOrder unconditionally, and overwrite
// Name/DriveType only when the later entry sets them.
func renderAttribute(presets []Attribute, id byte) *Attribute {
	var out *Attribute

	for _, preset := range presets {
		if preset.ID != nil && *preset.ID != id {
			continue
		}

		if out == nil {
			p := preset
			out = &p
			continue
		}

		out.Format = preset.Format
		out.ByteOrder = preset.ByteOrder
		if preset.HasName {
			out.Name = preset.Name
			out.HasName = true
		}
		if preset.DriveType != AnyDrive {
			out.DriveType = preset.DriveType
		}
	}

	return out
}
