// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package porcelain

import (
	"encoding/binary"

	"github.com/blockdev-tools/smart/errs"
	"github.com/blockdev-tools/smart/scsi"
)

// SCSI sequences scsi.Device LOG SENSE calls with log-page decoding for the
// handful of counters smartctl-style tools report.
type SCSI struct {
	dev *scsi.Device

	supported    map[byte]bool
	supportedSet bool
}

// NewSCSI wraps a SCSI command-layer device.
func NewSCSI(dev *scsi.Device) *SCSI {
	return &SCSI{dev: dev}
}

// SupportedPages issues LOG SENSE page 0x00 (Supported Log Pages) once and
// caches the result; subsequent helpers consult the cache before issuing
// their own command.
func (s *SCSI) SupportedPages() (map[byte]bool, error) {
	if s.supportedSet {
		return s.supported, nil
	}

	data, err := s.dev.LogSense(scsi.LogPageSupportedPages, 0)
	if err != nil {
		return nil, err
	}
	page, err := scsi.ParsePage(data)
	if err != nil {
		return nil, err
	}

	supported := make(map[byte]bool, len(page.Data))
	for _, p := range page.Data {
		supported[p] = true
	}
	s.supported = supported
	s.supportedSet = true
	return supported, nil
}

// requireSupported fails with *errs.NotSupported before issuing any
// command if page isn't in the cached supported-pages list.
func (s *SCSI) requireSupported(page byte) error {
	supported, err := s.SupportedPages()
	if err != nil {
		return err
	}
	if !supported[page] {
		return &errs.NotSupported{}
	}
	return nil
}

func (s *SCSI) logSenseParams(page byte) ([]scsi.Parameter, error) {
	if err := s.requireSupported(page); err != nil {
		return nil, err
	}
	data, err := s.dev.LogSense(page, 0)
	if err != nil {
		return nil, err
	}
	logPage, err := scsi.ParsePage(data)
	if err != nil {
		return nil, err
	}
	return logPage.Parameters()
}

// ErrorCounterKind names one of the six standard SCSI error-counter log
// parameters shared by the write/read/read-reverse/verify error counter
// log pages.
type ErrorCounterKind int

const (
	ErrorsCorrectedNoDelay ErrorCounterKind = iota
	ErrorsCorrectedDelay
	TotalErrorsCorrected
	TotalTimesCorrectionAlgorithmProcessed
	TotalBytesProcessed
	TotalUncorrectedErrors
)

func paramValue(v []byte) uint64 {
	var out uint64
	for _, b := range v {
		out = out<<8 | uint64(b)
	}
	return out
}

func (s *SCSI) errorCounters(page byte) (map[ErrorCounterKind]uint64, error) {
	params, err := s.logSenseParams(page)
	if err != nil {
		return nil, err
	}

	out := make(map[ErrorCounterKind]uint64, len(params))
	for _, p := range params {
		if p.Code > uint16(TotalUncorrectedErrors) {
			continue
		}
		out[ErrorCounterKind(p.Code)] = paramValue(p.Value)
	}
	return out, nil
}

// WriteErrorCounters issues LOG SENSE page 0x02.
func (s *SCSI) WriteErrorCounters() (map[ErrorCounterKind]uint64, error) {
	return s.errorCounters(scsi.LogPageWriteErrorCounters)
}

// ReadErrorCounters issues LOG SENSE page 0x03.
func (s *SCSI) ReadErrorCounters() (map[ErrorCounterKind]uint64, error) {
	return s.errorCounters(scsi.LogPageReadErrorCounters)
}

// ReadReverseErrorCounters issues LOG SENSE page 0x04.
func (s *SCSI) ReadReverseErrorCounters() (map[ErrorCounterKind]uint64, error) {
	return s.errorCounters(scsi.LogPageReadRevErrCounters)
}

// VerifyErrorCounters issues LOG SENSE page 0x05.
func (s *SCSI) VerifyErrorCounters() (map[ErrorCounterKind]uint64, error) {
	return s.errorCounters(scsi.LogPageVerifyErrorCounters)
}

// NonMediumErrorCount issues LOG SENSE page 0x06 and returns its single
// cumulative counter parameter.
func (s *SCSI) NonMediumErrorCount() (uint64, error) {
	params, err := s.logSenseParams(scsi.LogPageNonMediumErrors)
	if err != nil {
		return 0, err
	}
	for _, p := range params {
		if p.Code == 0 {
			return paramValue(p.Value), nil
		}
	}
	return 0, nil
}

// Temperature issues LOG SENSE page 0x0D. Current is the drive's present
// temperature in degrees Celsius; Reference is the drive's maximum rated
// operating temperature. Either may be nil if the parameter's value byte
// reports 0xff ("reserved"/unavailable) or is absent from the response.
func (s *SCSI) Temperature() (current, reference *byte, err error) {
	params, err := s.logSenseParams(scsi.LogPageTemperature)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range params {
		if len(p.Value) < 2 {
			continue
		}
		t := p.Value[1]
		if t == 0xff {
			continue
		}
		switch p.Code {
		case 0x0000:
			v := t
			current = &v
		case 0x0001:
			v := t
			reference = &v
		}
	}
	return current, reference, nil
}

// DatesAndCycleCounters is the decoded Start-Stop Cycle Counter log page
// (0x0E): manufacture/accounting dates as the ASCII strings the device
// reports, unreformatted, and accumulated vs. specified-lifetime start-stop and
// load-unload cycle counts.
type DatesAndCycleCounters struct {
	ManufactureDate string
	AccountingDate  string

	SpecifiedStartStopCycles   uint32
	AccumulatedStartStopCycles uint32

	SpecifiedLoadUnloadCycles   uint32
	AccumulatedLoadUnloadCycles uint32
}

// DatesAndCycleCounters issues LOG SENSE page 0x0E.
func (s *SCSI) DatesAndCycleCounters() (DatesAndCycleCounters, error) {
	params, err := s.logSenseParams(scsi.LogPageStartStopCycles)
	if err != nil {
		return DatesAndCycleCounters{}, err
	}

	var out DatesAndCycleCounters
	for _, p := range params {
		switch p.Code {
		case 0x0001:
			out.ManufactureDate = string(p.Value)
		case 0x0002:
			out.AccountingDate = string(p.Value)
		case 0x0003:
			if len(p.Value) >= 4 {
				out.SpecifiedStartStopCycles = binary.BigEndian.Uint32(p.Value)
			}
		case 0x0004:
			if len(p.Value) >= 4 {
				out.AccumulatedStartStopCycles = binary.BigEndian.Uint32(p.Value)
			}
		case 0x0005:
			if len(p.Value) >= 4 {
				out.SpecifiedLoadUnloadCycles = binary.BigEndian.Uint32(p.Value)
			}
		case 0x0006:
			if len(p.Value) >= 4 {
				out.AccumulatedLoadUnloadCycles = binary.BigEndian.Uint32(p.Value)
			}
		}
	}
	return out, nil
}

// SelfTestResult is one entry of the Self-Test Results log page (0x10).
type SelfTestResult struct {
	Number            byte
	SelfTestCode      byte
	Result            byte
	SegmentNumber     byte
	PowerOnHours      uint16
	LBAFirstFailure   uint32
	SenseKey          byte
	ASC               byte
	ASCQ              byte
}

// SelfTestResults issues LOG SENSE page 0x10 and decodes its up-to-20
// fixed-format parameters in descending recency order (as the device
// reports them).
func (s *SCSI) SelfTestResults() ([]SelfTestResult, error) {
	params, err := s.logSenseParams(scsi.LogPageSelfTestResults)
	if err != nil {
		return nil, err
	}

	var out []SelfTestResult
	for _, p := range params {
		if len(p.Value) < 16 {
			continue
		}
		v := p.Value
		out = append(out, SelfTestResult{
			Number:          byte(p.Code),
			SelfTestCode:    v[0] >> 5,
			Result:          v[0] & 0x0f,
			SegmentNumber:   v[1],
			PowerOnHours:    binary.BigEndian.Uint16(v[2:4]),
			LBAFirstFailure: binary.BigEndian.Uint32(v[4:8]),
			SenseKey:        v[8] & 0x0f,
			ASC:             v[9],
			ASCQ:            v[10],
		})
	}
	return out, nil
}

// InformationalExceptions is the decoded Informational Exceptions log page
// (0x2F): the additional sense code pair a device's background health
// check last reported, plus its most recent temperature reading if the
// device appends one.
type InformationalExceptions struct {
	ASC         byte
	ASCQ        byte
	Temperature *byte
}

// InformationalExceptions issues LOG SENSE page 0x2F.
func (s *SCSI) InformationalExceptions() (InformationalExceptions, error) {
	params, err := s.logSenseParams(scsi.LogPageInformationalExcept)
	if err != nil {
		return InformationalExceptions{}, err
	}

	var out InformationalExceptions
	for _, p := range params {
		if p.Code != 0 || len(p.Value) < 2 {
			continue
		}
		out.ASC = p.Value[0]
		out.ASCQ = p.Value[1]
		if len(p.Value) >= 3 && p.Value[2] != 0xff {
			t := p.Value[2]
			out.Temperature = &t
		}
	}
	return out, nil
}

// Identification is a SCSI device's standard INQUIRY fields plus whichever
// VPD device identification (page 0x83) descriptors the device reports. A
// device with no page 0x83 support still returns the INQUIRY half with
// Descriptors nil.
type Identification struct {
	scsi.Inquiry
	Descriptors []scsi.VPDDescriptor
}

// Identify issues a standard INQUIRY and a VPD device identification
// inquiry, decoding both. A device identification failure (some SCSI
// devices don't implement page 0x83) is not fatal: Descriptors comes back
// nil and only the INQUIRY decode error, if any, is returned.
func (s *SCSI) Identify() (Identification, error) {
	raw, err := s.dev.Inquiry(false, 0)
	if err != nil {
		return Identification{}, err
	}
	inq, err := scsi.ParseInquiry(raw)
	if err != nil {
		return Identification{}, err
	}

	out := Identification{Inquiry: inq}
	if vpdRaw, err := s.dev.Inquiry(true, 0x83); err == nil && len(vpdRaw) >= 4 {
		pageLen := int(binary.BigEndian.Uint16(vpdRaw[2:4]))
		if 4+pageLen <= len(vpdRaw) {
			if descs, err := scsi.ParseDeviceID(vpdRaw[4 : 4+pageLen]); err == nil {
				out.Descriptors = descs
			}
		}
	}
	return out, nil
}
