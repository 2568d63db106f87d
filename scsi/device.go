// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package scsi

import (
	"github.com/rs/zerolog"

	"github.com/blockdev-tools/smart/ata"
	"github.com/blockdev-tools/smart/errs"
	"github.com/blockdev-tools/smart/internal/device"
	"github.com/blockdev-tools/smart/internal/hexutil"
	"github.com/blockdev-tools/smart/internal/iodir"
)

// Device is the SCSI command layer: it owns a platform device.Handle and
// turns CDB builders into actual command execution, decoding the sense
// buffer the OS hands back on every call. It also implements ata.Transport,
// tunnelling ATA commands through ATA PASS-THROUGH (16) (SAT) for hosts
// with no native ATA ioctl.
type Device struct {
	handle device.Handle
	log    zerolog.Logger
}

// NewDevice wraps an already-open platform handle. log may be the zero
// Logger, which discards output.
func NewDevice(handle device.Handle, log zerolog.Logger) *Device {
	return &Device{handle: handle, log: log}
}

func (d *Device) Close() error { return d.handle.Close() }

// exec runs cdb through the platform handle, decodes the returned sense
// buffer (if any), and hex-dumps request/response payloads at debug level.
func (d *Device) exec(cdb []byte, dir iodir.Direction) (data []byte, sense *Sense, err error) {
	d.log.Info().Hex("cdb", cdb).Str("direction", directionLabel(dir)).Msg("scsi command")

	if d.log.GetLevel() <= zerolog.DebugLevel {
		if p := dir.Payload(); len(p) > 0 {
			d.log.Debug().Msg("scsi request data\n" + hexutil.Dump16(p))
		}
	}

	senseBuf, respData, err := d.handle.DoPlatformCmd(cdb, dir, 252, dataCapacity(dir))
	if err != nil {
		return nil, nil, &errs.IO{Op: "scsi command", Err: err}
	}

	if d.log.GetLevel() <= zerolog.DebugLevel && len(respData) > 0 {
		d.log.Debug().Msg("scsi response data\n" + hexutil.Dump16(respData))
	}

	if len(senseBuf) == 0 {
		return respData, nil, nil
	}

	s, err := ParseSense(senseBuf)
	if err != nil {
		return respData, nil, err
	}
	return respData, s, nil
}

func dataCapacity(dir iodir.Direction) int {
	switch dir.Kind() {
	case iodir.KindFrom:
		return dir.Capacity()
	case iodir.KindTo:
		return len(dir.Payload())
	default:
		return 0
	}
}

func directionLabel(dir iodir.Direction) string {
	switch dir.Kind() {
	case iodir.KindFrom:
		return "from"
	case iodir.KindTo:
		return "to"
	default:
		return "none"
	}
}

// senseError turns a non-informational sense into a *errs.Sense, or nil if
// sense is absent or reports an informational (non-error) key.
func senseError(s *Sense) error {
	if s == nil {
		return nil
	}
	key, asc, ascq, ok := s.KCQ()
	if !ok || IsInformational(key) {
		return nil
	}
	return &errs.Sense{Key: key, ASC: asc, ASCQ: ascq}
}

// Inquiry issues a standard or vital-product-data INQUIRY and returns the
// raw response for the caller's decoder.
func (d *Device) Inquiry(vital bool, page byte) ([]byte, error) {
	cdb, dir := buildInquiry(vital, page, 4096)
	data, sense, err := d.exec(cdb[:], dir)
	if err != nil {
		return nil, err
	}
	if e := senseError(sense); e != nil {
		return nil, e
	}
	return data, nil
}

// ReadCapacity10 issues READ CAPACITY(10) and returns its 8-byte response.
func (d *Device) ReadCapacity10(lba *uint32, pmi bool) ([]byte, error) {
	cdb, dir := buildReadCapacity10(lba, pmi)
	data, sense, err := d.exec(cdb[:], dir)
	if err != nil {
		return nil, err
	}
	if e := senseError(sense); e != nil {
		return nil, e
	}
	return data, nil
}

// LogSense issues LOG SENSE for the given page/subpage and returns its raw
// response. A page the device doesn't support surfaces as
// *errs.NotSupported when the device returns ILLEGAL REQUEST (key 0x05).
func (d *Device) LogSense(page, subpage byte) ([]byte, error) {
	cdb, dir := buildLogSense(false, false, false, false, page, subpage, 0)
	data, sense, err := d.exec(cdb[:], dir)
	if err != nil {
		return nil, err
	}
	if key, _, _, ok := sense.KCQ(); ok && key == 0x05 {
		return nil, &errs.NotSupported{}
	}
	if e := senseError(sense); e != nil {
		return nil, e
	}
	return data, nil
}

// isDefectListNotFound reports whether sense is the well-known "defect list
// not found" condition (key 0x05, ASC 0x1c, ASCQ 0x00/0x01/0x02), which is
// mapped to a count of zero rather than propagated as an error: the device
// is explicitly answering the question.
func isDefectListNotFound(sense *Sense) bool {
	key, asc, ascq, ok := sense.KCQ()
	return ok && key == 0x05 && asc == 0x1c && ascq <= 0x02
}

// ReadDefectData10 issues READ DEFECT DATA(10): a 4-byte header probe
// followed by a second call sized to the header's reported list length.
func (d *Device) ReadDefectData10(format defectListFormat, reqPList, reqGList bool) (DefectListHeader, []byte, error) {
	hdrCDB, hdrDir := buildReadDefectData10(format, reqPList, reqGList)
	hdrData, sense, err := d.exec(hdrCDB[:], hdrDir)
	if err != nil {
		return DefectListHeader{}, nil, err
	}
	if isDefectListNotFound(sense) {
		return DefectListHeader{Format: format}, nil, nil
	}
	if e := senseError(sense); e != nil {
		return DefectListHeader{}, nil, e
	}
	hdr, err := ParseDefectListHeader(hdrData)
	if err != nil {
		return DefectListHeader{}, nil, err
	}

	if hdr.ListLength == 0 {
		return hdr, nil, nil
	}

	var cdb CDB10
	cdb[0] = OpReadDefect10
	cdb[2] = defectListByte(format, reqPList, reqGList)
	total := hdr.ListLength + 4
	cdb[7] = byte(total >> 8)
	cdb[8] = byte(total)
	data, sense, err := d.exec(cdb[:], iodir.From(total))
	if err != nil {
		return hdr, nil, err
	}
	if isDefectListNotFound(sense) {
		return DefectListHeader{Format: format}, nil, nil
	}
	if e := senseError(sense); e != nil {
		return hdr, nil, e
	}
	if len(data) < 4 {
		return hdr, nil, shortBuffer("defect list", 4, len(data))
	}
	return hdr, data[4:], nil
}

// ReadDefectData12 is ReadDefectData10's 12-byte-CDB / 8-byte-header
// counterpart, used when the reported list length may exceed what a
// 10-byte CDB's 16-bit allocation-length field can address.
func (d *Device) ReadDefectData12(format defectListFormat, reqPList, reqGList bool) (DefectListHeader, []byte, error) {
	hdrCDB, hdrDir := buildReadDefectData12(format, reqPList, reqGList)
	hdrData, sense, err := d.exec(hdrCDB[:], hdrDir)
	if err != nil {
		return DefectListHeader{}, nil, err
	}
	if isDefectListNotFound(sense) {
		return DefectListHeader{Format: format}, nil, nil
	}
	if e := senseError(sense); e != nil {
		return DefectListHeader{}, nil, e
	}
	hdr, err := ParseDefectListHeader12(hdrData)
	if err != nil {
		return DefectListHeader{}, nil, err
	}

	if hdr.ListLength == 0 {
		return hdr, nil, nil
	}

	var cdb CDB12
	cdb[0] = OpReadDefect12
	cdb[1] = defectListByte(format, reqPList, reqGList)
	total := hdr.ListLength + 8
	cdb[6] = byte(total >> 24)
	cdb[7] = byte(total >> 16)
	cdb[8] = byte(total >> 8)
	cdb[9] = byte(total)
	data, sense, err := d.exec(cdb[:], iodir.From(total))
	if err != nil {
		return hdr, nil, err
	}
	if isDefectListNotFound(sense) {
		return DefectListHeader{Format: format}, nil, nil
	}
	if e := senseError(sense); e != nil {
		return hdr, nil, e
	}
	if len(data) < 8 {
		return hdr, nil, shortBuffer("defect list", 8, len(data))
	}
	return hdr, data[8:], nil
}

// registersFromDescriptor carries the task-file registers back out of
// sense descriptor 0x09's 12-byte payload, at the fixed offsets spec'd for
// ATA PASS-THROUGH (16)'s register-return descriptor.
func registersFromDescriptor(payload []byte) (ata.RegistersRead, error) {
	if len(payload) < 12 {
		return ata.RegistersRead{}, shortBuffer("ata status return descriptor", 12, len(payload))
	}
	return ata.RegistersRead{
		Error:       payload[1],
		SectorCount: payload[3],
		Sector:      payload[5],
		CylLow:      payload[7],
		CylHigh:     payload[9],
		Device:      payload[10],
		Status:      payload[11],
	}, nil
}

// ATADo implements ata.Transport by tunnelling w through ATA PASS-THROUGH
// (16) with CK_COND set, recovering the returned task-file registers from
// the descriptor-format sense the device is required to return.
func (d *Device) ATADo(dir iodir.Direction, w ata.RegistersWrite) (ata.RegistersRead, []byte, error) {
	cdb := buildATAPassThrough16(dir, w)

	payload := dir
	if dir.IsNone() {
		payload = iodir.From(512)
	}

	data, sense, err := d.exec(cdb[:], payload)
	if err != nil {
		return ata.RegistersRead{}, nil, err
	}

	if sense == nil || !sense.Current {
		return ata.RegistersRead{}, data, &errs.NoRegisters{}
	}

	if sense.Fixed != nil && sense.Fixed.Valid && sense.Fixed.Key == 0x05 && sense.Fixed.ASC == 0x20 && sense.Fixed.ASCQ == 0x00 {
		return ata.RegistersRead{}, nil, &errs.NotSupported{}
	}

	if sense.Descriptor == nil {
		return ata.RegistersRead{}, nil, &errs.NoRegisters{}
	}

	var descPayload []byte
	for _, desc := range sense.Descriptor.Descriptors {
		if desc.Code == DescriptorATAStatusReturn {
			descPayload = desc.Data
			break
		}
	}
	if descPayload == nil {
		return ata.RegistersRead{}, nil, &errs.NoRegisters{}
	}

	regs, err := registersFromDescriptor(descPayload)
	if err != nil {
		return ata.RegistersRead{}, nil, err
	}

	key, asc, ascq := sense.Descriptor.Key, sense.Descriptor.ASC, sense.Descriptor.ASCQ
	// Some SAT bridges return an all-zero KCQ even though registers were
	// recovered; that is tolerated, not treated as an error.
	if !IsInformational(key) && !(key == 0 && asc == 0 && ascq == 0) {
		return regs, data, &errs.Sense{Key: key, ASC: asc, ASCQ: ascq}
	}

	return regs, data, nil
}
