// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package scsi

import (
	"fmt"

	"github.com/blockdev-tools/smart/errs"
)

func shortBuffer(what string, want, got int) error {
	return fmt.Errorf("%s: need at least %d bytes, got %d", what, want, got)
}

// Sense is a decoded SCSI sense, informational or not (IsInformational
// tells the keys apart); decode failures produce *errs.Nonsense instead.
// Exactly one of Fixed or Descriptor is set.
type Sense struct {
	Current    bool
	Fixed      *FixedSense
	Descriptor *DescriptorSense
}

// KCQ reports the key/ASC/ASCQ triple this sense identifies. ok is false
// only for an Invalid fixed-format sense, which carries no interpretable
// condition.
func (s *Sense) KCQ() (key, asc, ascq byte, ok bool) {
	switch {
	case s == nil:
		return 0, 0, 0, false
	case s.Fixed != nil:
		if !s.Fixed.Valid {
			return 0, 0, 0, false
		}
		return s.Fixed.Key, s.Fixed.ASC, s.Fixed.ASCQ, true
	case s.Descriptor != nil:
		return s.Descriptor.Key, s.Descriptor.ASC, s.Descriptor.ASCQ, true
	default:
		return 0, 0, 0, false
	}
}

// informational sense keys never represent an error condition.
const (
	senseKeyOk        = 0x00
	senseKeyRecovered = 0x01
	senseKeyCompleted = 0x0f
)

// IsInformational reports whether key is one of the keys spec'd as "not an
// error": Ok, Recovered, or Completed.
func IsInformational(key byte) bool {
	switch key {
	case senseKeyOk, senseKeyRecovered, senseKeyCompleted:
		return true
	default:
		return false
	}
}

// FixedSense is the fixed-format sense layout (response codes 0x70/0x71).
// Valid is false for the reserved "information not valid" marker, in which
// case no other field is meaningful and KCQ returns ok=false.
type FixedSense struct {
	Valid           bool
	FileMark        bool
	EOM             bool
	IncorrectLength bool
	Key             byte
	Info            [4]byte
	CmdInfo         [4]byte
	ASC             byte
	ASCQ            byte
	FRUC            byte
	SKS             [3]byte
	More            []byte
}

// DescriptorSense is the descriptor-format sense layout (response codes
// 0x72/0x73): a KCQ plus an ordered list of typed descriptors.
type DescriptorSense struct {
	Key         byte
	ASC         byte
	ASCQ        byte
	Descriptors []Descriptor
}

// Descriptor is one sense descriptor: an 8-bit code identifying its
// meaning and its payload bytes. Code 0x09 is the well-known ATA status
// return descriptor carrying recovered task-file registers.
type Descriptor struct {
	Code byte
	Data []byte
}

// DescriptorATAStatusReturn is the well-known sense descriptor code that
// carries recovered ATA task-file registers after ATA PASS-THROUGH (16).
const DescriptorATAStatusReturn = 0x09

// ParseSense dispatches on the response code in data[0] and decodes the
// fixed or descriptor form accordingly. Any other response code, or data
// too short to carry one, is a malformed sense.
func ParseSense(data []byte) (*Sense, error) {
	if len(data) == 0 {
		return nil, &errs.Nonsense{Reason: "empty sense buffer"}
	}

	switch data[0] & 0x7f {
	case 0x70, 0x71:
		fs, err := parseFixedSense(data)
		if err != nil {
			return nil, &errs.Nonsense{Reason: err.Error()}
		}
		return &Sense{Current: data[0]&0x7f == 0x70, Fixed: fs}, nil
	case 0x72, 0x73:
		ds, err := parseDescriptorSense(data)
		if err != nil {
			return nil, &errs.Nonsense{Reason: err.Error()}
		}
		return &Sense{Current: data[0]&0x7f == 0x72, Descriptor: ds}, nil
	default:
		return nil, &errs.Nonsense{Reason: fmt.Sprintf("unrecognized response code %#02x", data[0])}
	}
}

func parseFixedSense(data []byte) (*FixedSense, error) {
	if len(data) < 18 {
		return nil, shortBuffer("fixed sense", 18, len(data))
	}
	if data[0]&0x80 != 0 {
		// original_source/src/scsi/data/sense/fixed.rs treats the VALID bit
		// being set (information field not meaningful) as Valid:false, not
		// as a malformed buffer; we follow that rather than the distilled
		// spec's "invalid marker raises Nonsense" wording.
		return &FixedSense{Valid: false}, nil
	}

	fs := &FixedSense{
		Valid:           true,
		FileMark:        data[2]&0x80 != 0,
		EOM:             data[2]&0x40 != 0,
		IncorrectLength: data[2]&0x20 != 0,
		Key:             data[2] & 0x0f,
		ASC:             data[12],
		ASCQ:            data[13],
		FRUC:            data[14],
	}
	copy(fs.Info[:], data[3:7])
	copy(fs.CmdInfo[:], data[8:12])
	copy(fs.SKS[:], data[15:18])

	length := int(data[7]) + 8
	if length > len(data) {
		return nil, shortBuffer("fixed sense additional data", length, len(data))
	}
	fs.More = data[18:length]

	return fs, nil
}

func parseDescriptorSense(data []byte) (*DescriptorSense, error) {
	if len(data) < 8 {
		return nil, shortBuffer("descriptor sense", 8, len(data))
	}

	ds := &DescriptorSense{
		Key:  data[1] & 0x0f,
		ASC:  data[2],
		ASCQ: data[3],
	}

	length := int(data[7]) + 8
	if length > len(data) {
		length = len(data)
	}

	for off := 8; off+2 <= length; {
		code := data[off]
		dlen := int(data[off+1])
		start := off + 2
		end := start + dlen
		if end > length {
			break
		}
		ds.Descriptors = append(ds.Descriptors, Descriptor{Code: code, Data: data[start:end]})
		off = end
	}

	return ds, nil
}
