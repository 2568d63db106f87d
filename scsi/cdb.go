// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package scsi

import (
	"github.com/blockdev-tools/smart/ata"
	"github.com/blockdev-tools/smart/internal/iodir"
)

// buildInquiry encodes a standard or vital-product-data INQUIRY CDB.
// Default allocation length is 4096 and the direction is always From.
func buildInquiry(vital bool, page byte, allocLen uint16) (CDB6, iodir.Direction) {
	var cdb CDB6
	cdb[0] = OpInquiry
	if vital {
		cdb[1] = 1
	}
	cdb[2] = page
	cdb[3] = byte(allocLen >> 8)
	cdb[4] = byte(allocLen)
	return cdb, iodir.From(int(allocLen))
}

// buildReadCapacity10 encodes READ CAPACITY(10), optionally with PMI and an
// LBA to report the capacity at a partial-medium-indicator boundary.
func buildReadCapacity10(lba *uint32, pmi bool) (CDB10, iodir.Direction) {
	var cdb CDB10
	cdb[0] = OpReadCapacity10
	if lba != nil {
		v := *lba
		cdb[2] = byte(v >> 24)
		cdb[3] = byte(v >> 16)
		cdb[4] = byte(v >> 8)
		cdb[5] = byte(v)
	}
	if pmi {
		cdb[8] = 1
	}
	return cdb, iodir.From(8)
}

// logSensePageControl is the 2-bit PC field of LOG SENSE, selecting which
// of the four parameter value sets (current/default × cumulative/threshold)
// to return.
type logSensePageControl byte

const (
	pcThresholdCurrent logSensePageControl = 0
	pcCumulativeCurrent logSensePageControl = 1
	pcDefaultThreshold  logSensePageControl = 2
	pcDefaultCumulative logSensePageControl = 3
)

func pageControl(useDefault, threshold bool) logSensePageControl {
	switch {
	case useDefault && threshold:
		return pcDefaultThreshold
	case useDefault && !threshold:
		return pcDefaultCumulative
	case !useDefault && threshold:
		return pcThresholdCurrent
	default:
		return pcCumulativeCurrent
	}
}

// buildLogSense encodes LOG SENSE. changed requests only parameters whose
// value has changed since the last query (PPC); saveParams requests the
// SP bit so changes persist across power cycles.
func buildLogSense(changed, saveParams, useDefault, threshold bool, page, subpage byte, paramPtr uint16) (CDB10, iodir.Direction) {
	var cdb CDB10
	cdb[0] = OpLogSense

	var hdr byte
	if changed {
		hdr |= 0x02
	}
	if saveParams {
		hdr |= 0x01
	}
	cdb[1] = hdr

	pc := pageControl(useDefault, threshold)
	cdb[2] = byte(pc)<<6 | (page & 0x3f)
	cdb[3] = subpage
	cdb[5] = byte(paramPtr >> 8)
	cdb[6] = byte(paramPtr)

	const allocLen = 4096
	cdb[7] = byte(allocLen >> 8)
	cdb[8] = byte(allocLen)

	return cdb, iodir.From(allocLen)
}

// defectListFormat is the 3-bit address-descriptor-format field shared by
// READ DEFECT DATA(10) and (12).
type defectListFormat byte

const (
	DefectFormatShortBlock defectListFormat = 0
	DefectFormatLongBlock  defectListFormat = 3
	DefectFormatBytesFromIndex defectListFormat = 4
	DefectFormatPhysicalSector defectListFormat = 5
)

// buildReadDefectData10 encodes READ DEFECT DATA(10), requesting only the
// 4-byte header (the list itself is read in a follow-up call sized by the
// header's reported length).
func buildReadDefectData10(format defectListFormat, reqPList, reqGList bool) (CDB10, iodir.Direction) {
	var cdb CDB10
	cdb[0] = OpReadDefect10
	cdb[2] = defectListByte(format, reqPList, reqGList)
	cdb[7] = 0
	cdb[8] = 4
	return cdb, iodir.From(4)
}

// buildReadDefectData12 encodes READ DEFECT DATA(12) the same way, with a
// 32-bit allocation length field and an 8-byte header.
func buildReadDefectData12(format defectListFormat, reqPList, reqGList bool) (CDB12, iodir.Direction) {
	var cdb CDB12
	cdb[0] = OpReadDefect12
	cdb[1] = defectListByte(format, reqPList, reqGList)
	const allocLen = 8
	cdb[6] = byte(allocLen >> 24)
	cdb[7] = byte(allocLen >> 16)
	cdb[8] = byte(allocLen >> 8)
	cdb[9] = byte(allocLen)
	return cdb, iodir.From(allocLen)
}

func defectListByte(format defectListFormat, reqPList, reqGList bool) byte {
	b := byte(format) & 0x7
	if reqPList {
		b |= 0x10
	}
	if reqGList {
		b |= 0x08
	}
	return b
}

// DefectListHeader is the decoded 4/8-byte header READ DEFECT DATA(10/12)
// returns ahead of the defect list itself.
type DefectListHeader struct {
	Format     defectListFormat
	PListValid bool
	GListValid bool
	ListLength int // bytes
}

// EntrySize is the size in bytes of one defect-list entry for this
// header's format, and thus the divisor the porcelain layer uses to turn
// ListLength into a count.
func (h DefectListHeader) EntrySize() int {
	switch h.Format {
	case DefectFormatShortBlock, DefectFormatBytesFromIndex:
		return 4
	default:
		return 8
	}
}

// ParseDefectListHeader decodes the 4-byte (10-byte CDB) header form.
func ParseDefectListHeader(data []byte) (DefectListHeader, error) {
	if len(data) < 4 {
		return DefectListHeader{}, shortBuffer("defect list header", 4, len(data))
	}
	return DefectListHeader{
		Format:     defectListFormat(data[1] & 0x7),
		PListValid: data[1]&0x10 != 0,
		GListValid: data[1]&0x08 != 0,
		ListLength: int(data[2])<<8 | int(data[3]),
	}, nil
}

// ParseDefectListHeader12 decodes the 8-byte (12-byte CDB) header form,
// which widens the list-length field to 32 bits.
func ParseDefectListHeader12(data []byte) (DefectListHeader, error) {
	if len(data) < 8 {
		return DefectListHeader{}, shortBuffer("defect list header", 8, len(data))
	}
	return DefectListHeader{
		Format:     defectListFormat(data[1] & 0x7),
		PListValid: data[1]&0x10 != 0,
		GListValid: data[1]&0x08 != 0,
		ListLength: int(data[4])<<24 | int(data[5])<<16 | int(data[6])<<8 | int(data[7]),
	}, nil
}

// atapassthroughFlags is the fixed byte-2 flags value spec'd for ATA
// PASS-THROUGH (16): off-line wait 0, CK_COND=1 (force register return via
// sense descriptor), T_DIR=in, BYT_BLOK=1, T_LENGTH=01.
const atapassthroughFlags = 0x2d

func ataProtocol(dir iodir.Direction) byte {
	switch dir.Kind() {
	case iodir.KindFrom:
		return 4
	case iodir.KindTo:
		return 5
	default:
		return 3
	}
}

// buildATAPassThrough16 encodes ATA PASS-THROUGH (16) around a task-file
// register write bundle.
func buildATAPassThrough16(dir iodir.Direction, w ata.RegistersWrite) CDB16 {
	var cdb CDB16
	cdb[0] = OpATAPassThru16
	cdb[1] = ataProtocol(dir) << 1
	cdb[2] = atapassthroughFlags
	cdb[4] = w.Features
	cdb[6] = w.SectorCount
	cdb[8] = w.Sector
	cdb[10] = w.CylLow
	cdb[12] = w.CylHigh
	cdb[13] = w.Device
	cdb[14] = w.Command
	return cdb
}
