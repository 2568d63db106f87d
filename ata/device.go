// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package ata

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blockdev-tools/smart/internal/hexutil"
	"github.com/blockdev-tools/smart/internal/iodir"
)

// Transport is the one platform-specific primitive the ATA layer needs: run
// a task-file register bundle with a given data direction and get back the
// registers and data the device returned. Implemented natively by a BSD CAM
// device handle (XPT_ATA_IO), and by tunnelling through SCSI ATA
// PASS-THROUGH (16) everywhere else.
type Transport interface {
	ATADo(dir iodir.Direction, w RegistersWrite) (RegistersRead, []byte, error)
}

// Device is the ATA command layer, generic over whichever Transport carries
// its commands. Owns its lower layer exclusively.
type Device[T Transport] struct {
	lower T
	log   zerolog.Logger
}

// NewDevice wraps a lower transport. log may be the zero Logger, which
// discards output.
func NewDevice[T Transport](lower T, log zerolog.Logger) *Device[T] {
	return &Device[T]{lower: lower, log: log}
}

// do is the thin wrapper every porcelain operation funnels through: it logs
// the register bundle at info level and hex-dumps request/response at debug
// level, per the one-line-per-command / hex-dump-per-command logging
// contract.
func (d *Device[T]) do(dir iodir.Direction, w RegistersWrite) (RegistersRead, []byte, error) {
	d.log.Info().
		Uint8("command", w.Command).
		Uint8("features", w.Features).
		Uint8("sector_count", w.SectorCount).
		Str("direction", directionString(dir)).
		Msg("ata command")

	if d.log.GetLevel() <= zerolog.DebugLevel {
		if p := dir.Payload(); len(p) > 0 {
			d.log.Debug().Msg("ata request data\n" + hexutil.Dump16(p))
		}
	}

	r, data, err := d.lower.ATADo(dir, w)
	if err != nil {
		return r, data, err
	}

	if d.log.GetLevel() <= zerolog.DebugLevel && len(data) > 0 {
		d.log.Debug().Msg("ata response data\n" + hexutil.Dump16(data))
	}

	return r, data, nil
}

func directionString(dir iodir.Direction) string {
	switch dir.Kind() {
	case iodir.KindNone:
		return "none"
	case iodir.KindFrom:
		return "from"
	case iodir.KindTo:
		return "to"
	default:
		return fmt.Sprintf("unknown(%d)", dir.Kind())
	}
}

// IdentifyDevice issues IDENTIFY DEVICE and returns the raw 512-byte
// response for the identify package to decode.
func (d *Device[T]) IdentifyDevice() ([]byte, error) {
	w := RegistersWrite{
		Command:     CommandIdentifyDevice,
		SectorCount: 1,
		Sector:      1,
	}
	_, data, err := d.do(iodir.From(512), w)
	return data, err
}

// SMARTReadDataRaw issues SMART READ DATA and returns the raw 512-byte
// attribute table for the smart package to decode.
func (d *Device[T]) SMARTReadDataRaw() ([]byte, error) {
	return d.smartRead(SMARTReadData)
}

// SMARTReadThresholdsRaw issues SMART READ THRESHOLDS and returns the raw
// 512-byte threshold table.
func (d *Device[T]) SMARTReadThresholdsRaw() ([]byte, error) {
	return d.smartRead(SMARTReadThresholds)
}

func (d *Device[T]) smartRead(feature byte) ([]byte, error) {
	w := RegistersWrite{
		Command:  CommandSMART,
		Features: feature,
		CylLow:   0x4f,
		CylHigh:  0xc2,
	}
	_, data, err := d.do(iodir.From(512), w)
	return data, err
}

// SMARTReturnStatus issues SMART RETURN STATUS and reports drive health:
// true (healthy), false (failing), or unknown (neither magic pair).
func (d *Device[T]) SMARTReturnStatus() (healthy *bool, err error) {
	w := RegistersWrite{
		Command:  CommandSMART,
		Features: SMARTReturnStatus,
		CylLow:   0x4f,
		CylHigh:  0xc2,
	}
	r, _, err := d.do(iodir.None(), w)
	if err != nil {
		return nil, err
	}

	switch {
	case r.CylLow == 0x4f && r.CylHigh == 0xc2:
		ok := true
		return &ok, nil
	case r.CylLow == 0xf4 && r.CylHigh == 0x2c:
		bad := false
		return &bad, nil
	default:
		return nil, nil
	}
}
