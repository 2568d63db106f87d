// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package porcelain sequences the ATA and SCSI command-layer primitives
// into the handful of operations callers actually want: a device's
// identity, its SMART health verdict, its annotated attribute table, and
// the SCSI log-page-backed counters smartctl-style tools report.
package porcelain

import (
	"github.com/blockdev-tools/smart/ata"
	"github.com/blockdev-tools/smart/drivedb"
	"github.com/blockdev-tools/smart/identify"
	"github.com/blockdev-tools/smart/smart"
)

// ATA sequences ata.Device primitives with the identify and smart decoders.
type ATA[T ata.Transport] struct {
	dev *ata.Device[T]
}

// NewATA wraps an ATA command-layer device.
func NewATA[T ata.Transport](dev *ata.Device[T]) *ATA[T] {
	return &ATA[T]{dev: dev}
}

// GetDeviceID issues IDENTIFY DEVICE and decodes it.
func (a *ATA[T]) GetDeviceID() (identify.Id, error) {
	data, err := a.dev.IdentifyDevice()
	if err != nil {
		return identify.Id{}, err
	}
	return identify.Parse(data), nil
}

// GetSMARTHealth issues SMART RETURN STATUS and reports drive health: true
// (healthy), false (failing), or nil (neither magic cylinder-register pair
// was returned).
func (a *ATA[T]) GetSMARTHealth() (*bool, error) {
	return a.dev.SMARTReturnStatus()
}

// GetSMARTAttributes issues SMART READ DATA and READ THRESHOLDS, decodes
// both, and annotates each attribute from meta's per-attribute render.
func (a *ATA[T]) GetSMARTAttributes(meta drivedb.DriveMeta) ([]*smart.Attribute, error) {
	data, err := a.dev.SMARTReadDataRaw()
	if err != nil {
		return nil, err
	}

	threshData, err := a.dev.SMARTReadThresholdsRaw()
	if err != nil {
		return nil, err
	}
	threshs := smart.ParseThresholds(threshData)

	attrs := smart.ParseAttributes(data, threshs)
	for _, attr := range attrs {
		if preset := meta.RenderAttribute(attr.ID); preset != nil {
			attr.Annotate(&smart.Meta{
				Name:      preset.Name,
				Format:    preset.Format,
				ByteOrder: preset.ByteOrder,
			})
		}
	}

	return attrs, nil
}
