// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package hexutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDump16SingleLine(t *testing.T) {
	data := []byte{0xec, 0x01, 0x02}
	assert.Equal(t, "0000: ec 01 02", Dump16(data))
}

func TestDump8WrapsAtWidth(t *testing.T) {
	data := make([]byte, 9)
	for i := range data {
		data[i] = byte(i)
	}
	got := Dump8(data)
	assert.Equal(t, "0000: 00 01 02 03 04 05 06 07\n0008: 08", got)
}

func TestDumpEmpty(t *testing.T) {
	assert.Equal(t, "", Dump16(nil))
}
