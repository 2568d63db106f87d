// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

// config is the optional YAML configuration file smartctl reads. Its
// drivedb paths fill in --drivedb and --extra-drivedb when those flags are
// not given; the device field is parsed but no command reads it.
type config struct {
	Device       string `yaml:"device"`
	DriveDBPath  string `yaml:"drivedb_path"`
	ExtraDriveDB string `yaml:"extra_drivedb_path"`
}

func loadConfig(path string) (config, error) {
	var c config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	return c, err
}
