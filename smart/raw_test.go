// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package smart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func entryWithRaw(raw0, raw1, raw2, raw3, raw4, raw5 byte) [12]byte {
	var e [12]byte
	e[5], e[6], e[7], e[8], e[9], e[10] = raw0, raw1, raw2, raw3, raw4, raw5
	return e
}

func TestRenderRawDefaultFormat(t *testing.T) {
	a := &Attribute{data: entryWithRaw(1, 2, 3, 4, 5, 6)}
	raw := RenderRaw(a)
	assert.Equal(t, RawKindDefault48, raw.Kind)

	want := read(reorder(a.data, "543210"), 48)
	assert.Equal(t, want, raw.U64)
}

func TestRenderRawHex64(t *testing.T) {
	a := &Attribute{
		data: entryWithRaw(1, 2, 3, 4, 5, 6),
		Meta: &Meta{Format: "raw64", ByteOrder: "wv543210"},
	}
	raw := RenderRaw(a)
	assert.Equal(t, RawKind64, raw.Kind)
}

func TestRenderRawSec2Hour(t *testing.T) {
	// 90061 seconds = 1d 01:01:01
	a := &Attribute{
		data: entryWithRaw(0, 0, 0, 1, 0x5f, 0xcd), // big-endian 0x00015fcd = 90061 under "012345"
		Meta: &Meta{Format: "sec2hour", ByteOrder: "012345"},
	}
	raw := RenderRaw(a)
	assert.Equal(t, RawKindSeconds, raw.Kind)
	assert.Equal(t, "1d 01:01:01", raw.String())
}

func TestRenderRawTemp10x(t *testing.T) {
	a := &Attribute{
		data: entryWithRaw(0, 0, 0, 0, 0, 0),
		Meta: &Meta{Format: "temp10x", ByteOrder: "543210"},
	}
	a.data[5] = 250 // entry[5] lands at raw48[5], the low byte of the 16-bit reading, under "543210"
	raw := RenderRaw(a)
	assert.Equal(t, RawKindCelsius, raw.Kind)
	assert.InDelta(t, 25.0, raw.Celsius, 0.01)
	assert.Equal(t, "25.0°C", raw.String())
}

func TestRenderRawTempMinMaxAllZeroButCurrent(t *testing.T) {
	a := &Attribute{
		data: entryWithRaw(0, 0, 0, 0, 0, 35),
		Meta: &Meta{Format: "tempminmax", ByteOrder: "012345"},
	}
	raw := RenderRaw(a)
	assert.Equal(t, RawKindCelsius, raw.Kind)
	assert.InDelta(t, 35.0, raw.Celsius, 0.01)
}

func TestRenderRawTempMinMaxWithRange(t *testing.T) {
	a := &Attribute{
		data: entryWithRaw(0, 0, 0, 20, 30, 25),
		Meta: &Meta{Format: "tempminmax", ByteOrder: "012345"},
	}
	raw := RenderRaw(a)
	assert.Equal(t, RawKindCelsiusMinMax, raw.Kind)
	assert.EqualValues(t, 25, raw.CelsiusCur)
	assert.EqualValues(t, 20, raw.CelsiusMin)
	assert.EqualValues(t, 30, raw.CelsiusMax)
}

func TestRenderRaw16OptAllZeroOptHidden(t *testing.T) {
	a := &Attribute{
		data: entryWithRaw(0, 5, 0, 0, 0, 0),
		Meta: &Meta{Format: "raw16(raw16)", ByteOrder: "012345"},
	}
	raw := RenderRaw(a)
	assert.Equal(t, RawKind16Opt16, raw.Kind)
	assert.Nil(t, raw.Opt16)
}

func TestRenderRaw24Opt8Format(t *testing.T) {
	a := &Attribute{
		data: entryWithRaw(1, 2, 3, 0, 0, 9),
		Meta: &Meta{Format: "raw24(raw8)", ByteOrder: "012345"},
	}
	raw := RenderRaw(a)
	assert.Equal(t, RawKind24Opt8, raw.Kind)
	assert.Equal(t, "9 (1 2 3)", raw.String()) // Div1 then opt bytes joined
}
