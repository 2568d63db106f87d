// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package porcelain

import (
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockdev-tools/smart/errs"
	"github.com/blockdev-tools/smart/internal/device"
	"github.com/blockdev-tools/smart/internal/iodir"
	"github.com/blockdev-tools/smart/scsi"
)

// fakeHandle answers every command from a page-code-keyed table of raw LOG
// SENSE responses, and counts how many commands were actually issued so
// tests can assert that "not supported" short-circuits without an I/O
// round-trip.
type fakeHandle struct {
	pages map[byte][]byte
	calls int
}

func (f *fakeHandle) DoPlatformCmd(cdb []byte, dir iodir.Direction, senseCapacity, dataCapacity int) ([]byte, []byte, error) {
	f.calls++
	page := cdb[2] & 0x3f
	data, ok := f.pages[page]
	if !ok {
		return nil, nil, nil
	}
	return nil, data, nil
}
func (f *fakeHandle) Type() device.Type { return device.TypeSCSI }
func (f *fakeHandle) Path() string      { return "/dev/fake" }
func (f *fakeHandle) Close() error      { return nil }

func logPageBuf(page byte, params [][2]interface{}) []byte {
	var body []byte
	for _, kv := range params {
		code := kv[0].(uint16)
		val := kv[1].([]byte)
		body = append(body, byte(code>>8), byte(code), 0x00, byte(len(val)))
		body = append(body, val...)
	}
	hdr := make([]byte, 4)
	hdr[0] = page
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(body)))
	return append(hdr, body...)
}

// supportedPagesBuf builds page 0x00's response: a 4-byte header followed
// by the raw list of supported page codes (no parameter structure).
func supportedPagesBuf(codes ...byte) []byte {
	hdr := make([]byte, 4)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(codes)))
	return append(hdr, codes...)
}

func newSCSI(pages map[byte][]byte) (*SCSI, *fakeHandle) {
	h := &fakeHandle{pages: pages}
	dev := scsi.NewDevice(h, zerolog.Logger{})
	return NewSCSI(dev), h
}

// inquiryHandle answers both a standard INQUIRY and a VPD page 0x83
// inquiry regardless of CDB contents, so Identify tests don't need to
// distinguish them by page-code byte the way the log-sense fakeHandle does.
type inquiryHandle struct {
	standard []byte
	vpd83    []byte
}

func (f *inquiryHandle) DoPlatformCmd(cdb []byte, dir iodir.Direction, senseCapacity, dataCapacity int) ([]byte, []byte, error) {
	if cdb[1]&0x01 != 0 {
		return nil, f.vpd83, nil
	}
	return nil, f.standard, nil
}
func (f *inquiryHandle) Type() device.Type { return device.TypeSCSI }
func (f *inquiryHandle) Path() string      { return "/dev/fake" }
func (f *inquiryHandle) Close() error      { return nil }

func standardInquiryBuf(vendor, product, rev string) []byte {
	buf := make([]byte, 36)
	buf[0] = 0x00 // connected disk device
	copy(buf[8:16], padRight(vendor, 8))
	copy(buf[16:32], padRight(product, 16))
	copy(buf[32:36], padRight(rev, 4))
	return buf
}

func padRight(s string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	copy(b, s)
	return b
}

func vpdDeviceIDBuf(descriptors ...[]byte) []byte {
	var body []byte
	for _, d := range descriptors {
		body = append(body, d...)
	}
	hdr := make([]byte, 4)
	hdr[1] = 0x83
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(body)))
	return append(hdr, body...)
}

func TestIdentifyDecodesInquiryAndVPD(t *testing.T) {
	eui64 := []byte{0x01, 0x02, 0x00, 0x08, 1, 2, 3, 4, 5, 6, 7, 8}
	h := &inquiryHandle{
		standard: standardInquiryBuf("ACME", "Disk Drive", "1.0"),
		vpd83:    vpdDeviceIDBuf(eui64),
	}
	dev := scsi.NewDevice(h, zerolog.Logger{})
	s := NewSCSI(dev)

	id, err := s.Identify()
	require.NoError(t, err)
	assert.Equal(t, "ACME", id.VendorID)
	assert.Equal(t, "Disk Drive", id.ProductID)
	require.Len(t, id.Descriptors, 1)
	assert.Equal(t, scsi.VPDIdentEUI64, id.Descriptors[0].ID.Kind)
}

func TestIdentifyToleratesMissingVPDPage(t *testing.T) {
	h := &inquiryHandle{
		standard: standardInquiryBuf("ACME", "Disk Drive", "1.0"),
		vpd83:    nil,
	}
	dev := scsi.NewDevice(h, zerolog.Logger{})
	s := NewSCSI(dev)

	id, err := s.Identify()
	require.NoError(t, err)
	assert.Nil(t, id.Descriptors)
}

func TestNonMediumErrorCount(t *testing.T) {
	supported := supportedPagesBuf(0x06)
	nme := logPageBuf(0x06, [][2]interface{}{{uint16(0), []byte{0, 0, 0, 42}}})

	s, _ := newSCSI(map[byte][]byte{0x00: supported, 0x06: nme})
	count, err := s.NonMediumErrorCount()
	require.NoError(t, err)
	assert.EqualValues(t, 42, count)
}

func TestTemperatureCurrentAndReference(t *testing.T) {
	supported := supportedPagesBuf(0x0d)
	temp := logPageBuf(0x0d, [][2]interface{}{
		{uint16(0x0000), []byte{0, 37}},
		{uint16(0x0001), []byte{0, 60}},
	})

	s, _ := newSCSI(map[byte][]byte{0x00: supported, 0x0d: temp})
	current, reference, err := s.Temperature()
	require.NoError(t, err)
	require.NotNil(t, current)
	require.NotNil(t, reference)
	assert.EqualValues(t, 37, *current)
	assert.EqualValues(t, 60, *reference)
}

func TestUnsupportedPageShortCircuitsWithoutIssuingCommand(t *testing.T) {
	supported := supportedPagesBuf() // no pages declared supported
	s, h := newSCSI(map[byte][]byte{0x00: supported})

	_, err := s.NonMediumErrorCount()
	require.Error(t, err)
	var notSupported *errs.NotSupported
	assert.ErrorAs(t, err, &notSupported)

	// One call for the SupportedPages probe, none for page 0x06 itself.
	assert.Equal(t, 1, h.calls)
}

func TestSupportedPagesCached(t *testing.T) {
	supported := supportedPagesBuf(0x06)
	nme := logPageBuf(0x06, [][2]interface{}{{uint16(0), []byte{0, 0, 0, 1}}})
	s, h := newSCSI(map[byte][]byte{0x00: supported, 0x06: nme})

	_, err := s.NonMediumErrorCount()
	require.NoError(t, err)
	_, err = s.NonMediumErrorCount()
	require.NoError(t, err)

	// Two NonMediumErrorCount calls, but SupportedPages issued only once.
	assert.Equal(t, 3, h.calls)
}
