// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

//go:build freebsd

package device

/*
#cgo LDFLAGS: -lcam
#include <stdlib.h>
#include <string.h>
#include <camlib.h>
#include <cam/cam_ccb.h>
#include <cam/scsi/scsi_message.h>

static void set_scsiio_cdb(struct ccb_scsiio *csio, const unsigned char *cdb, int len) {
	memcpy(&csio->cdb_io.cdb_bytes, cdb, len);
}

static unsigned char *scsiio_sense_ptr(struct ccb_scsiio *csio) {
	return (unsigned char *)&csio->sense_data;
}

static struct dev_match_result get_match_result(struct ccb_dev_match *m, int i) {
	return m->matches[i];
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/blockdev-tools/smart/ata"
	"github.com/blockdev-tools/smart/errs"
	"github.com/blockdev-tools/smart/internal/iodir"
)

const camDefaultTimeoutMS = 10 * 1000

type camHandle struct {
	dev  *C.struct_cam_device
	path string
	typ  Type
}

// Open opens path via the CAM transport layer, typically /dev/passN or
// /dev/daN, and determines its device type via an XPT_PATH_INQ CCB.
func Open(path string) (Handle, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	errBuf := make([]C.char, 512)
	dev := C.cam_open_device(cPath, C.O_RDWR)
	if dev == nil {
		return nil, &errs.IO{Op: "cam_open_device " + path, Err: fmt.Errorf("%s", C.GoString(&errBuf[0]))}
	}

	h := &camHandle{dev: dev, path: path, typ: TypeSCSI}

	ccb := C.cam_getccb(dev)
	if ccb != nil {
		(*C.struct_ccb_pathinq)(unsafe.Pointer(ccb)).ccb_h.func_code = C.XPT_PATH_INQ
		if C.cam_send_ccb(dev, ccb) >= 0 {
			pathinq := (*C.struct_ccb_pathinq)(unsafe.Pointer(ccb))
			if pathinq.protocol == C.PROTO_ATA {
				h.typ = TypeATA
			}
		}
		C.cam_freeccb(ccb)
	}

	return h, nil
}

func (h *camHandle) Type() Type   { return h.typ }
func (h *camHandle) Path() string { return h.path }

func (h *camHandle) Close() error {
	C.cam_close_device(h.dev)
	return nil
}

// DoPlatformCmd tunnels a SCSI CDB through a CAM SCSI-I/O CCB, the same
// path the scsi package uses for ATA PASS-THROUGH (16) on this backend.
func (h *camHandle) DoPlatformCmd(cdb []byte, dir iodir.Direction, senseCapacity, dataCapacity int) ([]byte, []byte, error) {
	ccb := C.cam_getccb(h.dev)
	if ccb == nil {
		return nil, nil, &errs.IO{Op: "cam_getccb", Err: fmt.Errorf("CCB allocation failed")}
	}
	defer C.cam_freeccb(ccb)

	csio := (*C.struct_ccb_scsiio)(unsafe.Pointer(ccb))

	var (
		flags C.uint32_t
		data  []byte
	)

	switch dir.Kind() {
	case iodir.KindNone:
		flags = C.CAM_DIR_NONE
	case iodir.KindFrom:
		flags = C.CAM_DIR_IN
		data = make([]byte, dir.Capacity())
	case iodir.KindTo:
		flags = C.CAM_DIR_OUT
		data = dir.Payload()
	}
	if dataCapacity > len(data) {
		grown := make([]byte, dataCapacity)
		copy(grown, data)
		data = grown
	}

	var dataPtr unsafe.Pointer
	if len(data) > 0 {
		dataPtr = unsafe.Pointer(&data[0])
	}

	C.cam_fill_csio(
		csio,
		1, // retry_count
		nil,
		flags|C.CAM_DEV_QFRZDIS,
		C.MSG_SIMPLE_Q_TAG,
		(*C.u_int8_t)(dataPtr),
		C.u_int32_t(len(data)),
		C.u_int8_t(senseCapacity),
		C.u_int8_t(len(cdb)),
		camDefaultTimeoutMS,
	)
	C.set_scsiio_cdb(csio, (*C.uchar)(unsafe.Pointer(&cdb[0])), C.int(len(cdb)))

	if C.cam_send_ccb(h.dev, ccb) < 0 {
		return nil, nil, &errs.IO{Op: "cam_send_ccb", Err: fmt.Errorf("CCB send failed")}
	}

	status := csio.ccb_h.status & C.CAM_STATUS_MASK
	if status != C.CAM_REQ_CMP && status != C.CAM_SCSI_STATUS_ERROR {
		return nil, nil, &errs.IO{Op: "cam_send_ccb", Err: fmt.Errorf("CAM status %#x", status)}
	}

	var sense []byte
	if csio.ccb_h.status&C.CAM_AUTOSNS_VALID != 0 {
		senseLen := int(csio.sense_len - csio.sense_resid)
		if senseLen > 0 {
			sense = C.GoBytes(unsafe.Pointer(C.scsiio_sense_ptr(csio)), C.int(senseLen))
		}
	}

	dataLen := int(csio.dxfer_len) - int(csio.resid)
	if dataLen < 0 {
		dataLen = 0
	}
	if dataLen > len(data) {
		dataLen = len(data)
	}

	return sense, data[:dataLen], nil
}

// ATADo issues an ATA command natively via an XPT_ATA_IO CCB instead of
// tunnelling through SCSI ATA PASS-THROUGH; only available when this
// backend's path inquiry reported an ATA protocol device.
func (h *camHandle) ATADo(dir iodir.Direction, w ata.RegistersWrite) (ata.RegistersRead, []byte, error) {
	ccb := C.cam_getccb(h.dev)
	if ccb == nil {
		return ata.RegistersRead{}, nil, &errs.IO{Op: "cam_getccb", Err: fmt.Errorf("CCB allocation failed")}
	}
	defer C.cam_freeccb(ccb)

	ataio := (*C.struct_ccb_ataio)(unsafe.Pointer(ccb))
	ataio.ccb_h.func_code = C.XPT_ATA_IO
	ataio.ccb_h.flags = C.CAM_DIR_NONE
	ataio.ccb_h.timeout = camDefaultTimeoutMS
	ataio.cmd.flags = C.CAM_ATAIO_NEEDRESULT | C.CAM_ATAIO_48BIT
	ataio.cmd.command = C.u_int8_t(w.Command)
	ataio.cmd.features = C.u_int8_t(w.Features)
	ataio.cmd.sector_count = C.u_int8_t(w.SectorCount)
	ataio.cmd.lba_low = C.u_int8_t(w.Sector)
	ataio.cmd.lba_mid = C.u_int8_t(w.CylLow)
	ataio.cmd.lba_high = C.u_int8_t(w.CylHigh)
	ataio.cmd.device = C.u_int8_t(w.Device)

	var data []byte
	switch dir.Kind() {
	case iodir.KindFrom:
		data = make([]byte, dir.Capacity())
		ataio.ccb_h.flags = C.CAM_DIR_IN
	case iodir.KindTo:
		data = dir.Payload()
		ataio.ccb_h.flags = C.CAM_DIR_OUT
	}
	if len(data) > 0 {
		ataio.data_ptr = (*C.u_int8_t)(unsafe.Pointer(&data[0]))
		ataio.dxfer_len = C.u_int32_t(len(data))
	}

	if C.cam_send_ccb(h.dev, ccb) < 0 {
		return ata.RegistersRead{}, nil, &errs.IO{Op: "cam_send_ccb(ATA)", Err: fmt.Errorf("CCB send failed")}
	}

	status := ataio.ccb_h.status & C.CAM_STATUS_MASK
	if status != C.CAM_REQ_CMP {
		return ata.RegistersRead{}, nil, &errs.IO{Op: "cam_send_ccb(ATA)", Err: fmt.Errorf("CAM status %#x", status)}
	}

	r := ata.RegistersRead{
		Error:       byte(ataio.res.error),
		SectorCount: byte(ataio.res.sector_count),
		Sector:      byte(ataio.res.lba_low),
		CylLow:      byte(ataio.res.lba_mid),
		CylHigh:     byte(ataio.res.lba_high),
		Device:      byte(ataio.res.device),
		Status:      byte(ataio.res.status),
	}

	return r, data, nil
}

// ListDevices walks the CAM Existing Device Table via repeated
// XPT_DEV_MATCH CCBs against /dev/xpt0, the way smartmontools' BSD
// enumerator does: bus entries named "xpt" are skipped, unconfigured
// devices are skipped, and the final per-device name prefers any
// peripheral whose name is not "pass" over the bus-assigned default.
func ListDevices() ([]string, error) {
	xpt := C.cam_open_device(C.CString("/dev/xpt0"), C.O_RDWR)
	if xpt == nil {
		return nil, &errs.IO{Op: "cam_open_device /dev/xpt0", Err: fmt.Errorf("cannot open CAM transport")}
	}
	defer C.cam_close_device(xpt)

	ccb := C.cam_getccb(xpt)
	defer C.cam_freeccb(ccb)

	matchCCB := (*C.struct_ccb_dev_match)(unsafe.Pointer(ccb))
	matchCCB.ccb_h.func_code = C.XPT_DEV_MATCH

	var records []MatchRecord

	for {
		if C.cam_send_ccb(xpt, ccb) < 0 {
			break
		}

		n := int(matchCCB.num_matches)
		for i := 0; i < n; i++ {
			result := C.get_match_result(matchCCB, C.int(i))
			switch result._type {
			case C.DEV_MATCH_BUS:
				bus := (*C.struct_bus_match_result)(unsafe.Pointer(&result.result))
				records = append(records, MatchRecord{
					Kind:    MatchBus,
					BusName: C.GoString(&bus.dev_name[0]),
					BusID:   int(bus.path_id),
				})
			case C.DEV_MATCH_DEVICE:
				dm := (*C.struct_device_match_result)(unsafe.Pointer(&result.result))
				records = append(records, MatchRecord{
					Kind:         MatchDevice,
					BusIDRef:     int(dm.path_id),
					DeviceID:     int(dm.target_id)<<16 | int(dm.target_lun),
					Unconfigured: dm.flags&C.DEV_RESULT_UNCONFIGURED != 0,
				})
			case C.DEV_MATCH_PERIPH:
				pm := (*C.struct_periph_match_result)(unsafe.Pointer(&result.result))
				records = append(records, MatchRecord{
					Kind:        MatchPeriph,
					DeviceIDRef: int(pm.target_id)<<16 | int(pm.target_lun),
					PeriphName:  C.GoString(&pm.periph_name[0]),
					Unit:        int(pm.unit_number),
				})
			}
		}

		if matchCCB.ccb_h.status&C.CAM_STATUS_MASK != C.CAM_REQ_CMP || matchCCB.status == C.CAM_DEV_MATCH_LAST {
			break
		}
	}

	return FoldDeviceNames(records), nil
}
