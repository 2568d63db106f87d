// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldDeviceNamesSkipsXptBusAndUnconfigured(t *testing.T) {
	records := []MatchRecord{
		{Kind: MatchBus, BusName: "xpt", BusID: 0},
		{Kind: MatchBus, BusName: "ahcich0", BusID: 1},
		{Kind: MatchDevice, BusIDRef: 0, DeviceID: 1},
		{Kind: MatchPeriph, DeviceIDRef: 1, PeriphName: "pass", Unit: 0},
		{Kind: MatchDevice, BusIDRef: 1, DeviceID: 2, Unconfigured: true},
		{Kind: MatchPeriph, DeviceIDRef: 2, PeriphName: "pass", Unit: 1},
	}

	out := FoldDeviceNames(records)
	assert.Empty(t, out)
}

func TestFoldDeviceNamesPrefersNonPassPeripheral(t *testing.T) {
	records := []MatchRecord{
		{Kind: MatchBus, BusName: "ahcich0", BusID: 1},
		{Kind: MatchDevice, BusIDRef: 1, DeviceID: 5},
		{Kind: MatchPeriph, DeviceIDRef: 5, PeriphName: "pass", Unit: 0},
		{Kind: MatchPeriph, DeviceIDRef: 5, PeriphName: "ada", Unit: 0},
	}

	out := FoldDeviceNames(records)
	assert.Equal(t, []string{"/dev/ada0"}, out)
}

func TestFoldDeviceNamesFallsBackToPassWhenNoOtherPeripheral(t *testing.T) {
	records := []MatchRecord{
		{Kind: MatchBus, BusName: "ahcich0", BusID: 1},
		{Kind: MatchDevice, BusIDRef: 1, DeviceID: 5},
		{Kind: MatchPeriph, DeviceIDRef: 5, PeriphName: "pass", Unit: 3},
	}

	out := FoldDeviceNames(records)
	assert.Equal(t, []string{"/dev/pass3"}, out)
}

func TestFoldDeviceNamesPreservesDiscoveryOrder(t *testing.T) {
	records := []MatchRecord{
		{Kind: MatchBus, BusName: "ahcich0", BusID: 1},
		{Kind: MatchDevice, BusIDRef: 1, DeviceID: 2},
		{Kind: MatchDevice, BusIDRef: 1, DeviceID: 1},
		{Kind: MatchPeriph, DeviceIDRef: 2, PeriphName: "ada", Unit: 1},
		{Kind: MatchPeriph, DeviceIDRef: 1, PeriphName: "ada", Unit: 0},
	}

	out := FoldDeviceNames(records)
	assert.Equal(t, []string{"/dev/ada1", "/dev/ada0"}, out)
}

func TestDeviceTypeString(t *testing.T) {
	assert.Equal(t, "SCSI", TypeSCSI.String())
	assert.Equal(t, "ATA", TypeATA.String())
}
