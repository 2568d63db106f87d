// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package device

import "fmt"

// MatchKind identifies which CAM XPT_DEV_MATCH result record a MatchRecord
// carries: a bus, a device, or a peripheral driver instance attached to a
// device. Kept platform-independent so the EDT-walk fold below can be unit
// tested without cgo.
type MatchKind int

const (
	MatchBus MatchKind = iota
	MatchDevice
	MatchPeriph
)

// MatchRecord is the platform-independent projection of one CAM
// XPT_DEV_MATCH result this package's BSD enumerator folds into device
// paths.
type MatchRecord struct {
	Kind MatchKind

	// Bus records.
	BusName string
	BusID   int

	// Device records.
	BusIDRef     int
	Unconfigured bool
	DeviceID     int

	// Peripheral records.
	DeviceIDRef int
	PeriphName  string
	Unit        int
}

// FoldDeviceNames walks an ordered slice of CAM match records — as
// returned, page by page, by repeated XPT_DEV_MATCH CCBs against
// /dev/xpt0 — and picks one path per configured device: the "xpt" bus
// itself is skipped, unconfigured devices are skipped, and for each
// remaining device the first peripheral name that is not "pass" wins over
// the bus-assigned default, since "pass" nodes are always present but
// "da"/"ada"/etc. nodes are the ones users expect.
func FoldDeviceNames(records []MatchRecord) []string {
	type devInfo struct {
		skip bool
		name string
		unit int
	}

	skipBuses := make(map[int]bool)
	devices := make(map[int]*devInfo)
	var order []int

	for _, r := range records {
		switch r.Kind {
		case MatchBus:
			if r.BusName == "xpt" {
				skipBuses[r.BusID] = true
			}
		case MatchDevice:
			if skipBuses[r.BusIDRef] || r.Unconfigured {
				continue
			}
			if _, ok := devices[r.DeviceID]; !ok {
				devices[r.DeviceID] = &devInfo{}
				order = append(order, r.DeviceID)
			}
		case MatchPeriph:
			d, ok := devices[r.DeviceIDRef]
			if !ok {
				continue
			}
			if d.name == "" || (d.name == "pass" && r.PeriphName != "pass") {
				d.name = r.PeriphName
				d.unit = r.Unit
			}
		}
	}

	var out []string
	for _, id := range order {
		d := devices[id]
		if d.name == "" {
			continue
		}
		out = append(out, fmt.Sprintf("/dev/%s%d", d.name, d.unit))
	}
	return out
}
