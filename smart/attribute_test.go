// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package smart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrEntry(id byte, flags uint16, value, worst byte) [12]byte {
	var e [12]byte
	e[0] = id
	e[1] = byte(flags)
	e[2] = byte(flags >> 8)
	e[3] = value
	e[4] = worst
	return e
}

func tableBytes(entries ...[12]byte) []byte {
	out := make([]byte, 2, 2+12*len(entries))
	for _, e := range entries {
		out = append(out, e[:]...)
	}
	return out
}

func TestParseAttributesSkipsZeroID(t *testing.T) {
	data := tableBytes(attrEntry(0, 0, 1, 1), attrEntry(5, 0, 100, 90))
	attrs := ParseAttributes(data, nil)
	require.Len(t, attrs, 1)
	assert.EqualValues(t, 5, attrs[0].ID)
}

func TestParseAttributesLastOccurrenceWins(t *testing.T) {
	data := tableBytes(attrEntry(9, 0, 50, 40), attrEntry(9, 0, 10, 5))
	attrs := ParseAttributes(data, nil)
	require.Len(t, attrs, 1)
	v, ok := attrs[0].Value()
	require.True(t, ok)
	assert.EqualValues(t, 10, v)
}

func TestParseAttributesPreservesFirstSeenOrder(t *testing.T) {
	data := tableBytes(attrEntry(3, 0, 1, 1), attrEntry(1, 0, 1, 1), attrEntry(3, 0, 2, 2))
	attrs := ParseAttributes(data, nil)
	require.Len(t, attrs, 2)
	assert.EqualValues(t, 3, attrs[0].ID)
	assert.EqualValues(t, 1, attrs[1].ID)
}

func TestParseAttributesAttachesThreshold(t *testing.T) {
	data := tableBytes(attrEntry(5, 0, 100, 90))
	threshs := map[byte]byte{5: 10}
	attrs := ParseAttributes(data, threshs)
	require.Len(t, attrs, 1)
	require.NotNil(t, attrs[0].Thresh)
	assert.EqualValues(t, 10, *attrs[0].Thresh)
}

func TestParseThresholdsSkipsZeroID(t *testing.T) {
	data := make([]byte, 2)
	data = append(data, 0, 99) // id 0
	data = append(data, make([]byte, 10)...)
	data = append(data, 5, 30) // id 5, thresh 30
	data = append(data, make([]byte, 10)...)
	got := ParseThresholds(data)
	assert.Equal(t, map[byte]byte{5: 30}, got)
}

func TestAttributeFlags(t *testing.T) {
	a := &Attribute{data: attrEntry(1, 0x0001, 1, 1)}
	assert.True(t, a.PreFail())
	assert.False(t, a.Online())

	a2 := &Attribute{data: attrEntry(1, 0x0002, 1, 1)}
	assert.True(t, a2.Online())
	assert.False(t, a2.PreFail())
}

func TestValueWorstDefaultOK(t *testing.T) {
	a := &Attribute{data: attrEntry(1, 0, 77, 66)}
	v, ok := a.Value()
	assert.True(t, ok)
	assert.EqualValues(t, 77, v)
	w, ok := a.Worst()
	assert.True(t, ok)
	assert.EqualValues(t, 66, w)
}

func TestValueHiddenByByteOrder(t *testing.T) {
	a := &Attribute{data: attrEntry(1, 0, 77, 66), Meta: &Meta{ByteOrder: "v543210"}}
	_, ok := a.Value()
	assert.False(t, ok)
	w, ok := a.Worst()
	assert.True(t, ok)
	assert.EqualValues(t, 66, w)
}

func TestNameUnannotated(t *testing.T) {
	a := &Attribute{}
	assert.Equal(t, "", a.Name())
	a.Annotate(&Meta{Name: "Reallocated_Sector_Ct"})
	assert.Equal(t, "Reallocated_Sector_Ct", a.Name())
}
