// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package drivedb

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Loader accumulates drive database entries from one main source and any
// number of additional sources, then builds the immutable DB they describe.
// Additional entries are concatenated ahead of the main set so user-supplied
// additions take match precedence over it.
type Loader struct {
	main       []Entry
	additional []Entry

	// yamlAttributes holds presets loaded via LoadAdditionalYAML. These
	// apply to every drive unconditionally, so they are not routed through
	// a synthetic Entry (which would need a matching model regex to ever be
	// folded into RenderMeta) but are instead exposed by YAMLAttributes for
	// the caller to pass alongside `-v` overrides as RenderMeta's
	// extraAttributes.
	yamlAttributes []Attribute
}

// Load replaces the main entry set by parsing a drivedb.h-style file at
// path.
func (l *Loader) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	entries, err := ParseDatabase(string(data))
	if err != nil {
		return err
	}
	l.main = entries
	return nil
}

// LoadAdditional appends a drivedb.h-style file's entries to the
// additional set.
func (l *Loader) LoadAdditional(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	entries, err := ParseDatabase(string(data))
	if err != nil {
		return err
	}
	l.additional = append(l.additional, entries...)
	return nil
}

// yamlAttribute is the YAML-file shape of one user-supplied attribute
// preset, an alternative ingestion path alongside the `-v` string grammar.
type yamlAttribute struct {
	ID        *byte  `yaml:"id"`
	Format    string `yaml:"format"`
	ByteOrder string `yaml:"byte_order"`
	Name      string `yaml:"name"`
	DriveType string `yaml:"drivetype"`
}

// LoadAdditionalYAML parses a YAML list of attribute preset records at path
// and appends them to the loader's YAML attribute set, retrievable via
// YAMLAttributes. These presets apply to every drive unconditionally (like
// a `-v` override), not just one matched by model/firmware, so they never
// go through DB's model-regex matching.
func (l *Loader) LoadAdditionalYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var records []yamlAttribute
	if err := yaml.Unmarshal(data, &records); err != nil {
		return err
	}

	for _, r := range records {
		a := Attribute{
			ID:        r.ID,
			Format:    r.Format,
			ByteOrder: r.ByteOrder,
			Name:      r.Name,
			HasName:   r.Name != "",
		}
		if a.ByteOrder == "" {
			a.ByteOrder = defaultByteOrder(a.Format)
		}
		switch r.DriveType {
		case "HDD":
			a.DriveType = HDD
		case "SSD":
			a.DriveType = SSD
		}
		l.yamlAttributes = append(l.yamlAttributes, a)
	}
	return nil
}

// YAMLAttributes returns the presets accumulated across every
// LoadAdditionalYAML call, in file-then-record order. Callers pass these to
// DB.RenderMeta as (part of) extraAttributes, the same path `-v` overrides
// use, since these presets are global rather than tied to a model match.
func (l *Loader) YAMLAttributes() []Attribute {
	return l.yamlAttributes
}

// DB concatenates the additional set ahead of the main set and constructs
// the immutable database they together describe.
func (l *Loader) DB() (*DB, error) {
	entries := append(append([]Entry{}, l.additional...), l.main...)
	return buildDB(entries)
}
