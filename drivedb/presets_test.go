// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package drivedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresetCanonicalForm(t *testing.T) {
	attr, err := ParsePreset("9,raw24(raw8),Power_On_Hours,HDD")
	require.NoError(t, err)
	require.NotNil(t, attr.ID)
	assert.EqualValues(t, 9, *attr.ID)
	assert.Equal(t, "raw24(raw8)", attr.Format)
	assert.Equal(t, "Power_On_Hours", attr.Name)
	assert.Equal(t, HDD, attr.DriveType)
}

func TestParsePresetAppliesToAllWithN(t *testing.T) {
	attr, err := ParsePreset("N,raw48")
	require.NoError(t, err)
	assert.Nil(t, attr.ID)
}

func TestParsePresetExplicitByteOrder(t *testing.T) {
	attr, err := ParsePreset("194,raw16:wv")
	require.NoError(t, err)
	assert.Equal(t, "wv", attr.ByteOrder)
}

func TestParsePresetDefaultByteOrderByFormat(t *testing.T) {
	attr, err := ParsePreset("1,raw64")
	require.NoError(t, err)
	assert.Equal(t, "543210wv", attr.ByteOrder)
}

func TestParsePresetLegacyAliases(t *testing.T) {
	cases := map[string]string{
		"9,minutes":      "min2hour",
		"9,seconds":      "sec2hour",
		"194,10xCelsius":  "temp10x",
		"197,increasing":  "raw48",
	}
	for legacy, wantFormat := range cases {
		attr, err := ParsePreset(legacy)
		require.NoErrorf(t, err, "legacy form %q", legacy)
		assert.Equalf(t, wantFormat, attr.Format, "legacy form %q", legacy)
	}
}

func TestParsePresetInvalidDriveType(t *testing.T) {
	_, err := ParsePreset("9,raw48,Name,BOGUS")
	assert.Error(t, err)
}

func TestParsePresetStringSkipsMalformedAndNonDashV(t *testing.T) {
	out := ParsePresetString("-q ignored -v 9,raw24(raw8),Power_On_Hours -v malformed -v 1,raw48")
	require.Len(t, out, 2)
	assert.EqualValues(t, 9, *out[0].ID)
	assert.EqualValues(t, 1, *out[1].ID)
}

func TestRenderAttributeFoldsLeftToRight(t *testing.T) {
	id5 := byte(5)
	presets := []Attribute{
		{ID: nil, Format: "raw48", ByteOrder: "543210"},
		{ID: &id5, Format: "raw16", ByteOrder: "10", HasName: true, Name: "Special"},
	}
	got := renderAttribute(presets, 5)
	require.NotNil(t, got)
	assert.Equal(t, "raw16", got.Format)
	assert.Equal(t, "Special", got.Name)
}

func TestRenderAttributeNoMatchReturnsNil(t *testing.T) {
	id1 := byte(1)
	presets := []Attribute{{ID: &id1, Format: "raw48"}}
	assert.Nil(t, renderAttribute(presets, 2))
}

func TestRenderAttributeLaterOverwritesFormatButKeepsNameIfUnset(t *testing.T) {
	id9 := byte(9)
	presets := []Attribute{
		{ID: &id9, Format: "raw48", HasName: true, Name: "Original"},
		{ID: &id9, Format: "raw16"},
	}
	got := renderAttribute(presets, 9)
	require.NotNil(t, got)
	assert.Equal(t, "raw16", got.Format)
	assert.Equal(t, "Original", got.Name)
}
