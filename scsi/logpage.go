// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package scsi

import (
	"encoding/binary"

	"github.com/blockdev-tools/smart/errs"
)

// Condition is when the device should establish a unit attention condition
// comparing a bounded counter parameter's cumulative value against its
// threshold value (SAM-4). Meaningless for any other Format.
type Condition int

const (
	ConditionNever Condition = iota
	ConditionAlways
	ConditionEq
	ConditionNe
	ConditionGt
)

// Format is a log parameter's value shape.
type Format int

const (
	FormatBoundedCounter Format = iota
	FormatUnboundedCounter
	FormatASCIIList
	FormatBinaryList
)

// Parameter is one decoded log parameter within a Page.
type Parameter struct {
	Code uint16

	// UpdateDisabled is the DU bit: false means the cumulative value
	// reflects every event, true means only LOG SELECT updates it.
	UpdateDisabled bool
	// TargetSave is the inverse of TSD: whether this parameter is saved at
	// vendor-specific intervals.
	TargetSave bool

	ThresholdComparison Condition
	Format               Format
	Value                []byte
}

// Page is a decoded LOG SENSE response header plus its parameter-area
// bytes, not yet split into individual Parameters.
type Page struct {
	Page    byte
	Subpage *byte
	// Saved is the inverse of the DS bit.
	Saved bool
	Data  []byte
}

// ParsePage decodes a LOG SENSE response's 4-byte page header and
// determines its parameter-area bounds from the reported page length.
func ParsePage(data []byte) (Page, error) {
	if len(data) < 4 {
		return Page{}, shortBuffer("log page header", 4, len(data))
	}

	paramLen := int(binary.BigEndian.Uint16(data[2:4]))
	total := paramLen + 4
	if len(data) < total {
		return Page{}, shortBuffer("log page data", total, len(data))
	}

	p := Page{
		Saved: data[0]&0x80 == 0,
		Page:  data[0] & 0x3f,
		Data:  data[4:total],
	}

	spf := data[0]&0x40 != 0
	switch {
	case !spf && data[1] == 0:
		p.Subpage = nil
	case !spf:
		return Page{}, &errs.Nonsense{Reason: "subpage byte set without SPF bit"}
	default:
		sp := data[1]
		p.Subpage = &sp
	}

	return p, nil
}

// Parameters splits p's data into individual log parameters, returning an
// error if any parameter's header claims more bytes than remain.
func (p Page) Parameters() ([]Parameter, error) {
	var params []Parameter

	data := p.Data
	i := 0
	for i < len(data) {
		if i+4 > len(data) {
			return nil, shortBuffer("log parameter header", i+4, len(data))
		}

		code := binary.BigEndian.Uint16(data[i : i+2])
		control := data[i+2]
		plen := int(data[i+3])
		i += 4

		if i+plen > len(data) {
			return nil, shortBuffer("log parameter value", i+plen, len(data))
		}

		var cond Condition
		if control&0x10 == 0 {
			cond = ConditionNever
		} else {
			switch (control & 0x0c) >> 2 {
			case 0b00:
				cond = ConditionAlways
			case 0b01:
				cond = ConditionEq
			case 0b10:
				cond = ConditionNe
			default:
				cond = ConditionGt
			}
		}

		var format Format
		switch control & 0x03 {
		case 0b00:
			format = FormatBoundedCounter
		case 0b01:
			format = FormatASCIIList
		case 0b10:
			format = FormatUnboundedCounter
		default:
			format = FormatBinaryList
		}

		params = append(params, Parameter{
			Code:                 code,
			UpdateDisabled:       control&0x80 != 0,
			TargetSave:           control&0x20 == 0,
			ThresholdComparison:  cond,
			Format:               format,
			Value:                data[i : i+plen],
		})

		i += plen
	}

	return params, nil
}
