// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package drivedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockdev-tools/smart/identify"
)

// TestMatchPrecedence is spec §8 scenario 4: of two entries whose model
// regex both match, the one with the smaller source-order index wins.
func TestMatchPrecedence(t *testing.T) {
	db, err := buildDB([]Entry{
		{Family: "foo-family", Model: "FOO.*", Firmware: ""},
		{Family: "foobar-family", Model: "FOOBAR", Firmware: ""},
	})
	require.NoError(t, err)

	entry := db.find("FOOBAR", "")
	require.NotNil(t, entry)
	assert.Equal(t, "foo-family", entry.Family)
}

func TestFindReturnsNilWithNoMatch(t *testing.T) {
	db, err := buildDB([]Entry{{Family: "foo", Model: "FOO.*"}})
	require.NoError(t, err)
	assert.Nil(t, db.find("BAR", ""))
}

func TestFindRespectsFirmwareRegex(t *testing.T) {
	db, err := buildDB([]Entry{{Family: "foo", Model: "FOO", Firmware: "1\\.0"}})
	require.NoError(t, err)
	assert.NotNil(t, db.find("FOO", "1.0"))
	assert.Nil(t, db.find("FOO", "2.0"))
}

func TestUSBPrefixedModelsDropped(t *testing.T) {
	db, err := buildDB([]Entry{{Family: "usb-bridge", Model: "USB:.*"}})
	require.NoError(t, err)
	assert.Empty(t, db.entries)
}

func TestDefaultEntryPartitionedOut(t *testing.T) {
	db, err := buildDB([]Entry{
		{Family: "DEFAULT", Presets: "-v 9,raw24(raw8)"},
		{Family: "foo", Model: "FOO"},
	})
	require.NoError(t, err)
	require.NotNil(t, db.defaultEntry)
	assert.Equal(t, "DEFAULT", db.defaultEntry.Family)
	// DEFAULT never appears as a matchable entry.
	assert.Nil(t, db.find("DEFAULT", ""))
	require.Len(t, db.entries, 1)
}

func TestOnlyFirstDefaultEntryKept(t *testing.T) {
	db, err := buildDB([]Entry{
		{Family: "DEFAULT", Presets: "-v 1,raw48,First"},
		{Family: "DEFAULT", Presets: "-v 1,raw48,Second"},
	})
	require.NoError(t, err)
	require.NotNil(t, db.defaultEntry)
	assert.Contains(t, db.defaultEntry.Presets, "First")
}

func TestRenderMetaMergesDefaultMatchedAndExtra(t *testing.T) {
	db, err := buildDB([]Entry{
		{Family: "DEFAULT", Presets: "-v 1,raw48,Default_Name"},
		{Family: "acme", Model: "ACME.*", Presets: "-v 9,raw24(raw8),Power_On_Hours"},
	})
	require.NoError(t, err)

	id := identify.Id{Model: "ACME-9000", Firmware: ""}
	extra := []Attribute{{ID: bytep(9), Format: "raw16", HasName: true, Name: "Overridden"}}
	meta := db.RenderMeta(id, extra)

	assert.Equal(t, "acme", meta.Family)

	attr9 := meta.RenderAttribute(9)
	require.NotNil(t, attr9)
	assert.Equal(t, "raw16", attr9.Format)
	assert.Equal(t, "Overridden", attr9.Name)

	attr1 := meta.RenderAttribute(1)
	require.NotNil(t, attr1)
	assert.Equal(t, "Default_Name", attr1.Name)
}

func TestFilterPresetsDropsMismatchedDriveType(t *testing.T) {
	id := identify.Id{Rotation: identify.Rotation{NonRotating: true}}
	presets := []Attribute{
		{ID: bytep(1), DriveType: HDD},
		{ID: bytep(2), DriveType: SSD},
		{ID: bytep(3), DriveType: AnyDrive},
	}
	out := filterPresets(id, presets)
	require.Len(t, out, 2)
	assert.Equal(t, SSD, out[0].DriveType)
	assert.Equal(t, AnyDrive, out[1].DriveType)
}

func TestFilterPresetsDropsAllDriveTypedWhenRotationUnknown(t *testing.T) {
	id := identify.Id{Rotation: identify.Rotation{Unknown: true}}
	presets := []Attribute{
		{ID: bytep(1), DriveType: HDD},
		{ID: bytep(2), DriveType: SSD},
		{ID: bytep(3), DriveType: AnyDrive},
	}
	out := filterPresets(id, presets)
	require.Len(t, out, 1)
	assert.Equal(t, AnyDrive, out[0].DriveType)
}

func bytep(b byte) *byte { return &b }
