// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"text/tabwriter"

	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blockdev-tools/smart/smart"
)

func newAttrsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attrs DEVICE",
		Short: "Issue SMART READ DATA / READ THRESHOLDS and print the decoded attribute table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := openHandle(args[0])
			if err != nil {
				return err
			}
			defer handle.Close()

			ataDev := openATA(handle, log.Logger)

			id, err := ataDev.GetDeviceID()
			if err != nil {
				return err
			}

			db, yamlAttrs, err := loadDriveDB()
			if err != nil {
				return err
			}
			extra, err := extraAttributes(yamlAttrs)
			if err != nil {
				return err
			}
			meta := db.RenderMeta(id, extra)

			if meta.Family != "" {
				fmt.Printf("Model family:      %s\n", meta.Family)
			}
			if meta.Warning != "" {
				fmt.Printf("Warning:           %s\n", meta.Warning)
			}

			attrs, err := ataDev.GetSMARTAttributes(meta)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVALUE\tWORST\tTHRESH\tRAW")
			for _, attr := range attrs {
				name := attr.Name()
				if name == "" {
					name = "Unknown_Attribute"
				}

				value, hasValue := attr.Value()
				worst, hasWorst := attr.Worst()

				thresh := "-"
				if attr.Thresh != nil {
					thresh = fmt.Sprintf("%d", *attr.Thresh)
				}

				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					attr.ID, name, byteOrDash(value, hasValue), byteOrDash(worst, hasWorst), thresh, smart.RenderRaw(attr).String())
			}
			return w.Flush()
		},
	}
}

func byteOrDash(v byte, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}
