// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package metricsadapter

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestObserveTemperatureRecordsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewAdapter(reg)
	a.ObserveTemperature("/dev/sda", 42)

	f := gaugeValue(t, reg, "disk_temperature_celsius")
	require.NotNil(t, f)
	require.Len(t, f.Metric, 1)
	assert.Equal(t, float64(42), f.Metric[0].GetGauge().GetValue())
}

func TestObserveErrorCountersLabelsByPageAndKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewAdapter(reg)
	a.ObserveErrorCounters("/dev/sda", "write", map[int]uint64{0: 3, 5: 9})

	f := gaugeValue(t, reg, "scsi_error_count")
	require.NotNil(t, f)
	assert.Len(t, f.Metric, 2)
}

func TestDecimalFormatsSmallIntegers(t *testing.T) {
	assert.Equal(t, "0", decimal(0))
	assert.Equal(t, "9", decimal(9))
	assert.Equal(t, "194", decimal(194))
}
