// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

//go:build linux

package device

import (
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/blockdev-tools/smart/errs"
	"github.com/blockdev-tools/smart/internal/iodir"
)

// Linux generic-SCSI ioctl constants (<scsi/sg.h>).
const (
	sgDxferNone       = -1
	sgDxferToDev      = -2
	sgDxferFromDev    = -3
	sgDxferToFromDev  = -4
	sgIO              = 0x2285
	sgErrDriverSense  = 0x08
	sgDefaultTimeout  = 10000 // milliseconds, fixed per spec
)

// sgIoHdr mirrors struct sg_io_hdr from <scsi/sg.h>.
type sgIoHdr struct {
	InterfaceID    int32
	DxferDirection int32
	CmdLen         uint8
	MxSbLen        uint8
	IovecCount     uint16
	DxferLen       uint32
	Dxferp         uintptr
	Cmdp           uintptr
	Sbp            uintptr
	Timeout        uint32
	Flags          uint32
	PackID         int32
	UsrPtr         uintptr
	Status         uint8
	MaskedStatus   uint8
	MsgStatus      uint8
	SbLenWr        uint8
	HostStatus     uint16
	DriverStatus   uint16
	Resid          int32
	Duration       uint32
	Info           uint32
}

type linuxHandle struct {
	fd   int
	path string
	typ  Type
}

// Open opens path as a generic-SCSI device node (typically /dev/sdX or
// /dev/sgN). ATA devices are always reached through the SAT tunnel on this
// backend, so every handle is typed SCSI.
func Open(path string) (Handle, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			return nil, &errs.IO{Op: "open " + path, Err: err}
		}
	}
	return &linuxHandle{fd: fd, path: path, typ: TypeSCSI}, nil
}

func (h *linuxHandle) Type() Type   { return h.typ }
func (h *linuxHandle) Path() string { return h.path }

func (h *linuxHandle) Close() error {
	return unix.Close(h.fd)
}

func (h *linuxHandle) DoPlatformCmd(cdb []byte, dir iodir.Direction, senseCapacity, dataCapacity int) ([]byte, []byte, error) {
	var (
		dxferDir int32
		data     []byte
	)

	switch dir.Kind() {
	case iodir.KindNone:
		dxferDir = sgDxferNone
	case iodir.KindFrom:
		dxferDir = sgDxferFromDev
		data = make([]byte, dir.Capacity())
	case iodir.KindTo:
		dxferDir = sgDxferToDev
		data = dir.Payload()
	}

	if dataCapacity > len(data) {
		// Allow callers to reserve a larger scratch buffer than the
		// direction alone implies.
		grown := make([]byte, dataCapacity)
		copy(grown, data)
		data = grown
	}

	sense := make([]byte, senseCapacity)

	hdr := sgIoHdr{
		InterfaceID:    'S',
		DxferDirection: dxferDir,
		CmdLen:         uint8(len(cdb)),
		MxSbLen:        uint8(senseCapacity),
		DxferLen:       uint32(len(data)),
		Timeout:        sgDefaultTimeout,
	}
	if len(data) > 0 {
		hdr.Dxferp = uintptr(unsafe.Pointer(&data[0]))
	}
	if len(cdb) > 0 {
		hdr.Cmdp = uintptr(unsafe.Pointer(&cdb[0]))
	}
	if len(sense) > 0 {
		hdr.Sbp = uintptr(unsafe.Pointer(&sense[0]))
	}

	if err := ioctl(uintptr(h.fd), sgIO, uintptr(unsafe.Pointer(&hdr))); err != nil {
		return nil, nil, &errs.IO{Op: "SG_IO", Err: err}
	}

	// A nonzero host status is a genuine transport failure. A nonzero
	// driver status of SG_ERR_DRIVER_SENSE just means sense accompanies a
	// normal CHECK CONDITION and is not itself an error.
	if hdr.HostStatus != 0 {
		return nil, nil, &errs.IO{Op: "SG_IO", Err: unix.Errno(hdr.HostStatus)}
	}

	residual := hdr.Resid
	if residual < 0 {
		residual = 0
	}
	dataLen := len(data) - int(residual)
	if dataLen < 0 {
		dataLen = 0
	}

	senseLen := int(hdr.SbLenWr)
	if senseLen > len(sense) {
		senseLen = len(sense)
	}

	return sense[:senseLen], data[:dataLen], nil
}

func ioctl(fd, cmd, ptr uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, ptr)
	if errno != 0 {
		return errno
	}
	return nil
}

// ListDevices walks the kernel's sysfs device tree the way smartmontools'
// Linux enumerator does: block devices whose DEVTYPE is "disk" are kept,
// skipping virtual and floppy devices, and the scsi_generic entries they
// point at via device/generic are suppressed from the generic sweep so
// each physical device is reported once.
func ListDevices() ([]string, error) {
	var names []string
	skipGenerics := make(map[string]bool)

	blockEntries, err := os.ReadDir("/sys/class/block")
	if err != nil {
		return nil, &errs.IO{Op: "readdir /sys/class/block", Err: err}
	}

	for _, e := range blockEntries {
		linkPath := filepath.Join("/sys/class/block", e.Name())

		real, err := filepath.EvalSymlinks(linkPath)
		if err != nil {
			continue
		}

		if strings.HasPrefix(real, "/sys/devices/virtual/") || strings.HasPrefix(real, "/sys/devices/platform/floppy") {
			continue
		}

		uevent, err := os.ReadFile(filepath.Join(real, "uevent"))
		if err != nil {
			continue
		}

		isDisk := false
		for _, line := range strings.Split(string(uevent), "\n") {
			if line == "DEVTYPE=disk" {
				isDisk = true
				break
			}
		}
		if !isDisk {
			continue
		}

		names = append(names, e.Name())

		if generic, err := filepath.EvalSymlinks(filepath.Join(real, "device", "generic")); err == nil {
			skipGenerics[filepath.Base(generic)] = true
		}
	}

	if genEntries, err := os.ReadDir("/sys/class/scsi_generic"); err == nil {
		for _, e := range genEntries {
			if !skipGenerics[e.Name()] {
				names = append(names, e.Name())
			}
		}
	}

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "/dev/" + n
	}
	return out, nil
}
