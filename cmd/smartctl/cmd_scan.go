// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockdev-tools/smart/internal/device"
)

func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List storage devices that look like they support SMART",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := device.ListDevices()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}
