// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blockdev-tools/smart/identify"
)

func newIdentifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "identify DEVICE",
		Short: "Issue IDENTIFY DEVICE and print the decoded result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openHandle(args[0])
			if err != nil {
				return err
			}
			defer handle.Close()

			id, err := openATA(handle, log.Logger).GetDeviceID()
			if err != nil {
				return err
			}

			fmt.Printf("Model:             %s\n", id.Model)
			fmt.Printf("Serial number:     %s\n", id.Serial)
			fmt.Printf("Firmware:          %s\n", id.Firmware)
			fmt.Printf("Capacity:          %d bytes\n", id.Capacity)
			fmt.Printf("Sector size:       %d logical / %d physical\n", id.SectorSizeLog, id.SectorSizePhy)
			fmt.Printf("Rotation rate:     %s\n", describeRotation(id))
			fmt.Printf("SMART support:     %s\n", id.SMART)
			fmt.Printf("48-bit addressing: %v\n", id.Addr48Supported)
			fmt.Printf("GP logging:        %v\n", id.GPLoggingSupported)
			if id.WWN != nil {
				fmt.Printf("WWN:               %x-%06x-%09x\n", id.WWN.NAA, id.WWN.OUI, id.WWN.UniqueID)
			}
			return nil
		},
	}
}

func describeRotation(id identify.Id) string {
	switch {
	case id.Rotation.Unknown:
		return "unknown"
	case id.Rotation.NonRotating:
		return "solid state"
	default:
		return "rotational"
	}
}
