// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

//go:build !linux

package main

// checkCaps is a no-op outside Linux: the capability model it checks
// (CAP_SYS_RAWIO / CAP_SYS_ADMIN) is Linux-specific.
func checkCaps() {}
