// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package scsi

import "strings"

// Inquiry is a decoded standard INQUIRY response.
type Inquiry struct {
	// Connected is nil when the peripheral qualifier reports neither
	// "device present" nor "device not present" (reserved or vendor
	// specific values).
	Connected  *bool
	DeviceType string

	Removable bool

	NACABit         bool
	HierAddressing  bool

	SCC        bool
	ACC        bool
	TPC        bool
	Protection bool

	EnclosureServices bool
	Multiport         bool
	MediaChanger      bool
	LinkedCmds        bool

	VendorID   string
	ProductID  string
	ProductRev string
}

func inqIsSet(x byte, bit uint) bool { return x&(1<<bit) != 0 }

var deviceTypeNames = map[byte]string{
	0x00: "SBC-2",
	0x01: "SSC-2",
	0x02: "SSC",
	0x03: "SPC-2",
	0x04: "SBC",
	0x05: "MMC-4",
	0x06: "Scanner device",
	0x07: "SBC",
	0x08: "SMC-2",
	0x09: "Communications device",
	0x0A: "?",
	0x0B: "?",
	0x0C: "SCC-2",
	0x0D: "SES",
	0x0E: "RBC",
	0x0F: "OCRW",
	0x10: "BCC",
	0x11: "OSD",
	0x12: "ADC",
	0x13: "Reserved",
	0x1D: "Reserved",
	0x1E: "Well known logical unit",
	0x1F: "Unknown or no device type",
}

// ParseInquiry decodes a standard INQUIRY response's first 36 bytes (the
// minimum guaranteed length).
func ParseInquiry(data []byte) (Inquiry, error) {
	if len(data) < InquiryReplyLen {
		return Inquiry{}, shortBuffer("inquiry response", InquiryReplyLen, len(data))
	}

	var inq Inquiry

	switch (data[0] & 0xe0) >> 5 {
	case 0b000:
		ok := true
		inq.Connected = &ok
	case 0b001:
		ok := false
		inq.Connected = &ok
	default:
		inq.Connected = nil
	}

	dt := data[0] & 0x1f
	if name, ok := deviceTypeNames[dt]; ok {
		inq.DeviceType = name
	} else {
		inq.DeviceType = "Reserved"
	}

	inq.Removable = inqIsSet(data[1], 7)

	inq.NACABit = inqIsSet(data[3], 5)
	inq.HierAddressing = inqIsSet(data[3], 4)

	inq.SCC = inqIsSet(data[5], 7)
	inq.ACC = inqIsSet(data[5], 6)
	inq.TPC = inqIsSet(data[5], 3)
	inq.Protection = inqIsSet(data[5], 0)

	inq.EnclosureServices = inqIsSet(data[6], 6)
	inq.Multiport = inqIsSet(data[6], 4)
	inq.MediaChanger = inqIsSet(data[6], 3)
	inq.LinkedCmds = inqIsSet(data[7], 3)

	inq.VendorID = strings.TrimSpace(string(data[8:16]))
	inq.ProductID = strings.TrimSpace(string(data[16:32]))
	inq.ProductRev = strings.TrimSpace(string(data[32:36]))

	return inq, nil
}
