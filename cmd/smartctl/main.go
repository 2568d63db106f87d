// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Command smartctl queries SMART/ATA/SCSI storage device health from the
// command line: device enumeration, IDENTIFY DEVICE decode, SMART health
// and attribute reporting, and SCSI log-page counters.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blockdev-tools/smart/ata"
	"github.com/blockdev-tools/smart/drivedb"
	"github.com/blockdev-tools/smart/identify"
	"github.com/blockdev-tools/smart/internal/device"
	"github.com/blockdev-tools/smart/scsi"
	"github.com/blockdev-tools/smart/smart"

	"github.com/blockdev-tools/smart/porcelain"
)

var opts struct {
	verbose        int
	configPath     string
	driveDBPath    string
	extraDriveDB   string
	extraDriveYAML string
	presets        []string
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	root := &cobra.Command{
		Use:           "smartctl",
		Short:         "Query SMART/ATA/SCSI storage device health",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogLevel()
			checkCaps()

			if opts.configPath != "" {
				cfg, err := loadConfig(opts.configPath)
				if err != nil {
					return err
				}
				if opts.driveDBPath == "" {
					opts.driveDBPath = cfg.DriveDBPath
				}
				if opts.extraDriveDB == "" {
					opts.extraDriveDB = cfg.ExtraDriveDB
				}
			}
			return nil
		},
	}

	root.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase logging verbosity (repeatable)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	root.PersistentFlags().StringVar(&opts.driveDBPath, "drivedb", "", "path to a drivedb.h-style drive database file")
	root.PersistentFlags().StringVar(&opts.extraDriveDB, "extra-drivedb", "", "path to an additional drivedb.h-style file, applied ahead of --drivedb")
	root.PersistentFlags().StringVar(&opts.extraDriveYAML, "extra-drivedb-yaml", "", "path to a YAML additional-attribute-preset file, applied ahead of --drivedb")
	root.PersistentFlags().StringArrayVar(&opts.presets, "preset", nil, "an attribute preset override in drivedb `-v ID,FORMAT[:BYTEORDER][,NAME[,HDD|SSD]]` grammar, repeatable")

	root.AddCommand(newScanCommand())
	root.AddCommand(newIdentifyCommand())
	root.AddCommand(newHealthCommand())
	root.AddCommand(newAttrsCommand())
	root.AddCommand(newSCSICommand())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("smartctl failed")
	}
}

func configureLogLevel() {
	switch {
	case opts.verbose >= 2:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case opts.verbose == 1:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadDriveDB builds the drive database from --drivedb / --extra-drivedb /
// --extra-drivedb-yaml, returning an empty database (no family match, no
// presets beyond --preset overrides) if none were given. The second return
// value carries --extra-drivedb-yaml's presets: they apply to every drive
// unconditionally, so they ride along with extraAttributes into RenderMeta
// rather than through the database's model-regex matching.
func loadDriveDB() (*drivedb.DB, []drivedb.Attribute, error) {
	var l drivedb.Loader

	if opts.extraDriveDB != "" {
		if err := l.LoadAdditional(opts.extraDriveDB); err != nil {
			return nil, nil, err
		}
	}
	if opts.extraDriveYAML != "" {
		if err := l.LoadAdditionalYAML(opts.extraDriveYAML); err != nil {
			return nil, nil, err
		}
	}
	if opts.driveDBPath != "" {
		if err := l.Load(opts.driveDBPath); err != nil {
			return nil, nil, err
		}
	}
	db, err := l.DB()
	if err != nil {
		return nil, nil, err
	}
	return db, l.YAMLAttributes(), nil
}

// extraAttributes merges --extra-drivedb-yaml's global presets with the
// --preset overrides (drivedb "-v" arguments), in that order: RenderMeta folds its
// extraAttributes left to right, so --preset always has the final say.
func extraAttributes(yamlAttrs []drivedb.Attribute) ([]drivedb.Attribute, error) {
	attrs := append([]drivedb.Attribute{}, yamlAttrs...)
	for _, s := range opts.presets {
		a, err := drivedb.ParsePreset(s)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// ataPorcelain is the subset of porcelain.ATA[T]'s method set that mentions
// no type parameter in its signatures, letting openATA return a single
// concrete type regardless of which Transport the opened handle resolved
// to.
type ataPorcelain interface {
	GetDeviceID() (identify.Id, error)
	GetSMARTHealth() (*bool, error)
	GetSMARTAttributes(meta drivedb.DriveMeta) ([]*smart.Attribute, error)
}

// openATA resolves handle's ATA transport: native XPT_ATA_IO on a BSD CAM
// handle whose path inquiry reported an ATA device, or a SCSI ATA
// PASS-THROUGH (16) tunnel everywhere else. The choice is made once, here,
// rather than per command.
func openATA(handle device.Handle, log zerolog.Logger) ataPorcelain {
	if native, ok := handle.(ata.Transport); ok && handle.Type() == device.TypeATA {
		return porcelain.NewATA(ata.NewDevice(native, log))
	}
	return porcelain.NewATA(ata.NewDevice(scsi.NewDevice(handle, log), log))
}

func openHandle(path string) (device.Handle, error) {
	return device.Open(path)
}
