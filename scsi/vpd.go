// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package scsi

// VPDProtocol is the transport protocol a VPD device identification
// descriptor's Protocol Identifier names. Only meaningful when the
// descriptor's protocol-identifier-valid bit is set.
type VPDProtocol int

const (
	VPDProtocolNone VPDProtocol = iota
	VPDProtocolFC
	VPDProtocolSCSI
	VPDProtocolSSA
	VPDProtocolFireWire
	VPDProtocolRDMA
	VPDProtocolISCSI
	VPDProtocolSAS
	VPDProtocolReserved
)

// VPDCodeSet is a device identification descriptor's identifier encoding.
type VPDCodeSet int

const (
	VPDCodeSetReserved VPDCodeSet = iota
	VPDCodeSetBinary
	VPDCodeSetASCII
)

// VPDAssociation is what entity a device identification descriptor's
// identifier is associated with.
type VPDAssociation int

const (
	VPDAssocDevice VPDAssociation = iota
	VPDAssocPort
	VPDAssocTarget
	VPDAssocReserved
)

// VPDIdentifierKind tags which field of VPDIdentifier is meaningful.
type VPDIdentifierKind int

const (
	VPDIdentVendorSpecific VPDIdentifierKind = iota
	VPDIdentGeneric
	VPDIdentEUI64
	VPDIdentFCName
	VPDIdentPort
	VPDIdentMD5
	VPDIdentReserved
	VPDIdentInvalid
)

// VPDIdentifier is a device identification descriptor's decoded identifier
// payload; exactly the field matching Kind is meaningful.
type VPDIdentifier struct {
	Kind VPDIdentifierKind

	Bytes       []byte // VendorSpecific, EUI64, FCName, MD5
	VendorID    []byte // Generic
	GenericID   []byte // Generic
	RelativePort uint32 // Port
	ReservedType byte   // Reserved
}

// VPDDescriptor is one decoded device identification (page 0x83)
// descriptor.
type VPDDescriptor struct {
	Proto   VPDProtocol
	CodeSet VPDCodeSet
	Assoc   VPDAssociation
	ID      VPDIdentifier
}

// ParseDeviceID decodes the descriptor list of a VPD page 0x83 (Device
// Identification) response, that is the bytes after its 4-byte page header.
func ParseDeviceID(data []byte) ([]VPDDescriptor, error) {
	var out []VPDDescriptor

	i := 0
	for i < len(data) {
		if i+4 > len(data) {
			return nil, shortBuffer("vpd device id descriptor header", i+4, len(data))
		}
		idlen := int(data[i+3])
		if i+4+idlen > len(data) {
			return nil, shortBuffer("vpd device id descriptor", i+4+idlen, len(data))
		}
		desc := data[i : i+4+idlen]

		var proto VPDProtocol
		if desc[1]&0x80 == 0 {
			proto = VPDProtocolNone
		} else {
			switch desc[0] >> 4 {
			case 0:
				proto = VPDProtocolFC
			case 1:
				proto = VPDProtocolSCSI
			case 2:
				proto = VPDProtocolSSA
			case 3:
				proto = VPDProtocolFireWire
			case 4:
				proto = VPDProtocolRDMA
			case 5:
				proto = VPDProtocolISCSI
			case 6:
				proto = VPDProtocolSAS
			default:
				proto = VPDProtocolReserved
			}
		}

		var codeset VPDCodeSet
		switch desc[0] & 0x0f {
		case 1:
			codeset = VPDCodeSetBinary
		case 2:
			codeset = VPDCodeSetASCII
		default:
			codeset = VPDCodeSetReserved
		}

		var assoc VPDAssociation
		switch (desc[1] >> 4) & 0x03 {
		case 0:
			assoc = VPDAssocDevice
		case 1:
			assoc = VPDAssocPort
		case 2:
			assoc = VPDAssocTarget
		default:
			assoc = VPDAssocReserved
		}

		id := parseVPDIdentifier(desc, codeset, assoc, idlen)

		out = append(out, VPDDescriptor{Proto: proto, CodeSet: codeset, Assoc: assoc, ID: id})
		i += 4 + idlen
	}

	return out, nil
}

func parseVPDIdentifier(desc []byte, codeset VPDCodeSet, assoc VPDAssociation, idlen int) VPDIdentifier {
	payload := desc[4:]

	parsePort := func(requiredAssoc VPDAssociation) VPDIdentifier {
		if assoc != requiredAssoc {
			return VPDIdentifier{Kind: VPDIdentReserved, ReservedType: desc[1] & 0x0f}
		}
		if !(codeset == VPDCodeSetBinary && idlen == 4) {
			return VPDIdentifier{Kind: VPDIdentInvalid}
		}
		v := uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])
		return VPDIdentifier{Kind: VPDIdentPort, RelativePort: v}
	}

	switch desc[1] & 0x0f {
	case 0:
		return VPDIdentifier{Kind: VPDIdentVendorSpecific, Bytes: payload}
	case 1:
		if len(payload) < 8 {
			return VPDIdentifier{Kind: VPDIdentInvalid}
		}
		return VPDIdentifier{Kind: VPDIdentGeneric, VendorID: payload[0:8], GenericID: payload[8:]}
	case 2:
		return VPDIdentifier{Kind: VPDIdentEUI64, Bytes: payload}
	case 3:
		return VPDIdentifier{Kind: VPDIdentFCName, Bytes: payload}
	case 4, 5:
		return parsePort(VPDAssocPort)
	case 6:
		return parsePort(VPDAssocDevice)
	case 7:
		return VPDIdentifier{Kind: VPDIdentMD5, Bytes: payload}
	default:
		return VPDIdentifier{Kind: VPDIdentReserved, ReservedType: desc[1] & 0x0f}
	}
}
