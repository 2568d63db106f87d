// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package drivedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseBasicEntry(t *testing.T) {
	src := `{
		"Acme HDD",
		"ACME HD[0-9]+",
		"1\\.0",
		"",
		"-v 9,raw24(raw8),Power_On_Hours"
	},`
	entries, err := ParseDatabase(src)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Acme HDD", entries[0].Family)
	assert.Equal(t, "ACME HD[0-9]+", entries[0].Model)
	assert.Equal(t, "1\\.0", entries[0].Firmware)
}

func TestParseDatabaseStringConcatenation(t *testing.T) {
	src := `{
		"Acme",
		"ACME" " " "HD.*",
		"",
		"",
		""
	}`
	entries, err := ParseDatabase(src)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ACME HD.*", entries[0].Model)
}

func TestParseDatabaseCommentsIgnored(t *testing.T) {
	src := `
	// leading comment
	{
		"Acme", /* inline */ "ACME.*", "", "", ""
	}
	`
	entries, err := ParseDatabase(src)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestParseDatabaseDollarFamilyDropped(t *testing.T) {
	src := `{ "$inactive", "FOO.*", "", "", "" }`
	entries, err := ParseDatabase(src)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseDatabaseMultipleEntries(t *testing.T) {
	src := `
	{ "one", "ONE.*", "", "", "" },
	{ "two", "TWO.*", "", "", "" }
	`
	entries, err := ParseDatabase(src)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Family)
	assert.Equal(t, "two", entries[1].Family)
}

func TestParseDatabaseMalformedMissingBrace(t *testing.T) {
	src := `"Acme", "ACME.*", "", "", ""`
	_, err := ParseDatabase(src)
	assert.Error(t, err)
}
