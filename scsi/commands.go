// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package scsi builds SCSI command descriptor blocks and decodes the
// binary structures SCSI devices return: sense data, log pages, VPD pages,
// and standard INQUIRY data. It also offers the SAT (SCSI/ATA Translation)
// tunnel that the ATA layer uses on hosts with no native ATA passthrough.
package scsi

// SCSI operation codes used by this package.
const (
	OpInquiry        = 0x12
	OpReadCapacity10 = 0x25
	OpReadDefect10   = 0x37
	OpLogSense       = 0x4d
	OpReadDefect12   = 0xb7
	OpATAPassThru16  = 0x85
)

// Minimum length of a standard INQUIRY response.
const InquiryReplyLen = 36

// Well-known log pages used by the porcelain error-counter/temperature
// helpers.
const (
	LogPageSupportedPages      = 0x00
	LogPageWriteErrorCounters  = 0x02
	LogPageReadErrorCounters   = 0x03
	LogPageReadRevErrCounters  = 0x04
	LogPageVerifyErrorCounters = 0x05
	LogPageNonMediumErrors     = 0x06
	LogPageTemperature         = 0x0d
	LogPageStartStopCycles     = 0x0e
	LogPageSelfTestResults     = 0x10
	LogPageInformationalExcept = 0x2f
)

// CDB types named after their byte length.
type CDB6 [6]byte
type CDB10 [10]byte
type CDB12 [12]byte
type CDB16 [16]byte
