// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blockdev-tools/smart/errs"
	"github.com/blockdev-tools/smart/porcelain"
	"github.com/blockdev-tools/smart/scsi"
)

func newSCSICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scsi DEVICE",
		Short: "Print SCSI log-page counters: error counters, temperature, start-stop cycles, self-test results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openHandle(args[0])
			if err != nil {
				return err
			}
			defer handle.Close()

			dev := porcelain.NewSCSI(scsi.NewDevice(handle, log.Logger))

			reportOrSkip("identification", func() error {
				id, err := dev.Identify()
				if err != nil {
					return err
				}
				fmt.Printf("Vendor / product:            %s %s (rev %s)\n", id.VendorID, id.ProductID, id.ProductRev)
				fmt.Printf("Device type:                 %s\n", id.DeviceType)
				for _, d := range id.Descriptors {
					switch d.ID.Kind {
					case scsi.VPDIdentEUI64:
						fmt.Printf("Identifier (EUI-64):         %x\n", d.ID.Bytes)
					case scsi.VPDIdentGeneric:
						fmt.Printf("Identifier:                  %x %x\n", d.ID.VendorID, d.ID.GenericID)
					}
				}
				return nil
			})

			reportOrSkip("read error counters", func() error {
				counters, err := dev.ReadErrorCounters()
				if err != nil {
					return err
				}
				fmt.Printf("Read error counters:         %+v\n", counters)
				return nil
			})

			reportOrSkip("write error counters", func() error {
				counters, err := dev.WriteErrorCounters()
				if err != nil {
					return err
				}
				fmt.Printf("Write error counters:        %+v\n", counters)
				return nil
			})

			reportOrSkip("non-medium error count", func() error {
				n, err := dev.NonMediumErrorCount()
				if err != nil {
					return err
				}
				fmt.Printf("Non-medium error count:      %d\n", n)
				return nil
			})

			reportOrSkip("temperature", func() error {
				current, reference, err := dev.Temperature()
				if err != nil {
					return err
				}
				fmt.Printf("Temperature:                 current=%s reference=%s\n", byteOrUnavailable(current), byteOrUnavailable(reference))
				return nil
			})

			reportOrSkip("start-stop cycle counters", func() error {
				d, err := dev.DatesAndCycleCounters()
				if err != nil {
					return err
				}
				fmt.Printf("Manufacture date:            %s\n", d.ManufactureDate)
				fmt.Printf("Accounting date:             %s\n", d.AccountingDate)
				fmt.Printf("Start-stop cycles:           %d accumulated / %d specified\n", d.AccumulatedStartStopCycles, d.SpecifiedStartStopCycles)
				fmt.Printf("Load-unload cycles:          %d accumulated / %d specified\n", d.AccumulatedLoadUnloadCycles, d.SpecifiedLoadUnloadCycles)
				return nil
			})

			reportOrSkip("self-test results", func() error {
				results, err := dev.SelfTestResults()
				if err != nil {
					return err
				}
				for _, r := range results {
					fmt.Printf("Self-test #%d: result=%#02x code=%#02x power-on-hours=%d\n", r.Number, r.Result, r.SelfTestCode, r.PowerOnHours)
				}
				return nil
			})

			reportOrSkip("informational exceptions", func() error {
				ie, err := dev.InformationalExceptions()
				if err != nil {
					return err
				}
				fmt.Printf("Informational exceptions:    asc=%#02x ascq=%#02x temperature=%s\n", ie.ASC, ie.ASCQ, byteOrUnavailable(ie.Temperature))
				return nil
			})

			return nil
		},
	}
}

// reportOrSkip runs fn and logs a page as unsupported rather than failing
// the whole command, since most devices implement only a subset of the
// optional log pages this command queries.
func reportOrSkip(label string, fn func() error) {
	if err := fn(); err != nil {
		if errs.IsNotSupported(err) {
			log.Debug().Str("page", label).Msg("log page not supported by this device")
			return
		}
		log.Warn().Err(err).Str("page", label).Msg("failed to read log page")
	}
}

func byteOrUnavailable(b *byte) string {
	if b == nil {
		return "unavailable"
	}
	return fmt.Sprintf("%d", *b)
}
