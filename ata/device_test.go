// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package ata

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockdev-tools/smart/internal/iodir"
)

// fakeTransport answers ATADo with a fixed register/data pair, letting
// tests exercise Device[T] porcelain without a real OS handle.
type fakeTransport struct {
	regs RegistersRead
	data []byte
	err  error
}

func (f *fakeTransport) ATADo(dir iodir.Direction, w RegistersWrite) (RegistersRead, []byte, error) {
	return f.regs, f.data, f.err
}

func TestSMARTReturnStatusHealthy(t *testing.T) {
	tr := &fakeTransport{regs: RegistersRead{CylLow: 0x4f, CylHigh: 0xc2}}
	dev := NewDevice[*fakeTransport](tr, zerolog.Logger{})
	healthy, err := dev.SMARTReturnStatus()
	require.NoError(t, err)
	require.NotNil(t, healthy)
	assert.True(t, *healthy)
}

func TestSMARTReturnStatusFailing(t *testing.T) {
	tr := &fakeTransport{regs: RegistersRead{CylLow: 0xf4, CylHigh: 0x2c}}
	dev := NewDevice[*fakeTransport](tr, zerolog.Logger{})
	healthy, err := dev.SMARTReturnStatus()
	require.NoError(t, err)
	require.NotNil(t, healthy)
	assert.False(t, *healthy)
}

func TestSMARTReturnStatusUnknown(t *testing.T) {
	tr := &fakeTransport{regs: RegistersRead{CylLow: 0x00, CylHigh: 0x00}}
	dev := NewDevice[*fakeTransport](tr, zerolog.Logger{})
	healthy, err := dev.SMARTReturnStatus()
	require.NoError(t, err)
	assert.Nil(t, healthy)
}

func TestIdentifyDeviceReturnsResponseData(t *testing.T) {
	tr := &fakeTransport{data: make([]byte, 512)}
	dev := NewDevice[*fakeTransport](tr, zerolog.Logger{})
	data, err := dev.IdentifyDevice()
	require.NoError(t, err)
	assert.Len(t, data, 512)
}
