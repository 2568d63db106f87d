// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package identify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blockdev-tools/smart/internal/byteutil"
)

// putWord stores v at word index i of a 512-byte IDENTIFY buffer, native
// endian per wordsFromBytes's own byte-swap convention.
func putWord(buf []byte, i int, v uint16) {
	if byteutil.IsLittleEndian {
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(v >> 8)
	} else {
		buf[2*i] = byte(v >> 8)
		buf[2*i+1] = byte(v)
	}
}

func TestParseCapacityPrefers48Bit(t *testing.T) {
	buf := make([]byte, 512)
	putWord(buf, 60, 0xffff) // 28-bit count, should be ignored
	putWord(buf, 61, 0x0001)
	putWord(buf, 100, 0x0010)
	putWord(buf, 101, 0)
	putWord(buf, 102, 0)
	putWord(buf, 103, 0)

	id := Parse(buf)
	assert.EqualValues(t, 512*0x10, id.Capacity)
	assert.Equal(t, uint32(512), id.SectorSizeLog)
	assert.GreaterOrEqual(t, id.SectorSizePhy, id.SectorSizeLog)
}

func TestParseCapacityFallsBackTo28Bit(t *testing.T) {
	buf := make([]byte, 512)
	putWord(buf, 60, 100)
	putWord(buf, 61, 0)

	id := Parse(buf)
	assert.EqualValues(t, 512*100, id.Capacity)
}

func TestParsePhysicalSectorSizeNeverSmallerThanLogical(t *testing.T) {
	buf := make([]byte, 512)
	// word 106: bit14 set (valid), bit13 set (physical size reported),
	// low nibble = 1 (physical = logical << 1).
	putWord(buf, 106, (1<<14)|(1<<13)|1)
	id := Parse(buf)
	assert.GreaterOrEqual(t, id.SectorSizePhy, id.SectorSizeLog)
	assert.Equal(t, id.SectorSizeLog<<1, id.SectorSizePhy)
}

func TestRotationNonRotating(t *testing.T) {
	buf := make([]byte, 512)
	putWord(buf, 217, 0x0001)
	id := Parse(buf)
	assert.True(t, id.Rotation.NonRotating)
	assert.False(t, id.Rotation.Unknown)
}

func TestRotationUnknown(t *testing.T) {
	for _, w := range []uint16{0x0000, 0xffff, 0x0002, 0x0400} {
		buf := make([]byte, 512)
		putWord(buf, 217, w)
		id := Parse(buf)
		assert.Truef(t, id.Rotation.Unknown, "word=%#04x", w)
	}
}

func TestRotationRPM(t *testing.T) {
	buf := make([]byte, 512)
	putWord(buf, 217, 7200)
	id := Parse(buf)
	assert.False(t, id.Rotation.NonRotating)
	assert.False(t, id.Rotation.Unknown)
	assert.EqualValues(t, 7200, id.Rotation.RPM)
}

func TestModelSerialFirmwareTrimmed(t *testing.T) {
	buf := make([]byte, 512)
	setString(buf, 27, 46, "ACME Disk Model    ")
	setString(buf, 10, 19, "SN12345   ")
	setString(buf, 23, 26, "1.0 ")

	id := Parse(buf)
	assert.Equal(t, "ACME Disk Model", id.Model)
	assert.Equal(t, "SN12345", id.Serial)
	assert.Equal(t, "1.0", id.Firmware)
}

func setString(buf []byte, start, end int, s string) {
	words := (end - start + 1) * 2
	b := make([]byte, words)
	copy(b, s)
	for i := range b {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	for i := 0; i*2 < len(b); i++ {
		hi, lo := b[2*i], b[2*i+1]
		// readString reads words[i] as (hi<<8 | lo) then emits hi, lo: store
		// the word so that byte-swapped load recovers hi, lo in that order.
		v := uint16(hi)<<8 | uint16(lo)
		putWord(buf, start+i, v)
	}
}

func TestTernaryString(t *testing.T) {
	assert.Equal(t, "not supported", Unsupported.String())
	assert.Equal(t, "supported, disabled", Disabled.String())
	assert.Equal(t, "supported, enabled", Enabled.String())
}

func TestATAVersionHighestBitWins(t *testing.T) {
	buf := make([]byte, 512)
	putWord(buf, 80, (1<<3)|(1<<7)|(1<<8))
	assert.Equal(t, 8, ATAVersion(buf))
}

func TestATAVersionReservedWord(t *testing.T) {
	buf := make([]byte, 512)
	putWord(buf, 80, 0x0000)
	assert.Equal(t, 0, ATAVersion(buf))
	putWord(buf, 80, 0xffff)
	assert.Equal(t, 0, ATAVersion(buf))
}

func TestWWNAbsentWhenZero(t *testing.T) {
	buf := make([]byte, 512)
	id := Parse(buf)
	assert.Nil(t, id.WWN)
}

func TestWWNDecode(t *testing.T) {
	buf := make([]byte, 512)
	putWord(buf, 108, 0x5000)
	putWord(buf, 109, 0xc500)
	putWord(buf, 110, 0x1234)
	putWord(buf, 111, 0x5678)
	id := Parse(buf)
	if assert.NotNil(t, id.WWN) {
		assert.EqualValues(t, 5, id.WWN.NAA)
	}
}
