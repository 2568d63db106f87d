// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

//go:build linux

package main

import (
	"unsafe"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const (
	linuxCapabilityVersion3 = 0x20080522

	capSysRawio = 1 << 17
	capSysAdmin = 1 << 21
)

type capHeader struct {
	version uint32
	pid     int
}

type capData struct {
	effective   uint32
	permitted   uint32
	inheritable uint32
}

type capsV3 struct {
	hdr  capHeader
	data [2]capData
}

// checkCaps invokes the capget syscall and warns if neither
// CAP_SYS_RAWIO nor CAP_SYS_ADMIN is in effect, since device access will
// then probably fail. Requires the binary to have the capability set (via
// setcap) or to be running as root.
func checkCaps() {
	caps := new(capsV3)
	caps.hdr.version = linuxCapabilityVersion3

	// RawSyscall since capget never blocks.
	_, _, errno := unix.RawSyscall(unix.SYS_CAPGET, uintptr(unsafe.Pointer(&caps.hdr)), uintptr(unsafe.Pointer(&caps.data)), 0)
	if errno != 0 {
		log.Debug().Err(errno).Msg("capget failed")
		return
	}

	if caps.data[0].effective&capSysRawio == 0 && caps.data[0].effective&capSysAdmin == 0 {
		log.Warn().Msg("neither cap_sys_rawio nor cap_sys_admin is in effect; device access will probably fail")
	}
}
