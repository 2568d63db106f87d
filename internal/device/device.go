// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package device is the only platform-dependent layer of the stack: it
// opens a path to a local storage device, owns the OS resource, enumerates
// candidate devices, and exposes one primitive — execute an opaque command
// buffer with a data direction and get back response and status. Two
// backends exist: a Linux-style generic-SCSI ioctl backend, and a
// BSD-style CAM passthrough backend.
package device

import (
	"github.com/blockdev-tools/smart/internal/iodir"
)

// Type is the kind of device a Handle was found to be at open time.
type Type int

const (
	TypeSCSI Type = iota
	TypeATA
)

func (t Type) String() string {
	if t == TypeATA {
		return "ATA"
	}
	return "SCSI"
}

// Handle is an opaque owner of an OS device resource. Open(path) creates
// one; Close releases it. A Handle carries no cached state about the
// device beyond what was needed to open it.
type Handle interface {
	// DoPlatformCmd executes cdb with the given data direction, returning
	// the sense and data buffers the OS returned (both possibly shorter
	// than requested).
	DoPlatformCmd(cdb []byte, dir iodir.Direction, senseCapacity, dataCapacity int) (sense, data []byte, err error)

	// Type reports whether this handle was opened against an ATA or SCSI
	// device, determined once at open time.
	Type() Type

	// Path is the device path this handle was opened against.
	Path() string

	Close() error
}
