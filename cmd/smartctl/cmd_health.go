// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health DEVICE",
		Short: "Issue SMART RETURN STATUS and print the overall health verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openHandle(args[0])
			if err != nil {
				return err
			}
			defer handle.Close()

			healthy, err := openATA(handle, log.Logger).GetSMARTHealth()
			if err != nil {
				return err
			}

			switch {
			case healthy == nil:
				fmt.Println("SMART overall health: UNKNOWN")
			case *healthy:
				fmt.Println("SMART overall health: PASSED")
			default:
				fmt.Println("SMART overall health: FAILED")
			}
			return nil
		},
	}
}
