// Copyright 2024 The blockdev-tools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package metricsadapter exposes decoded SMART attributes and SCSI
// error-counter porcelain output as Prometheus gauges, labeled by device
// path so a single collector can front every drive on a host.
package metricsadapter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blockdev-tools/smart/smart"
)

// Adapter owns the gauge vectors this package registers. Unregistered
// metrics stay at zero cardinality until a device's values are pushed
// through Observe*.
type Adapter struct {
	attribute prometheus.GaugeVec
	worst     prometheus.GaugeVec
	raw       prometheus.GaugeVec
	threshold prometheus.GaugeVec

	temperature prometheus.GaugeVec
	errorCount  prometheus.GaugeVec
}

// NewAdapter constructs an Adapter and registers its collectors against
// reg.
func NewAdapter(reg prometheus.Registerer) *Adapter {
	a := &Adapter{
		attribute: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smart_attribute_value",
			Help: "Normalized SMART attribute current value",
		}, []string{"device", "id", "name"}),
		worst: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smart_attribute_worst",
			Help: "Normalized SMART attribute worst-ever value",
		}, []string{"device", "id", "name"}),
		raw: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smart_attribute_raw",
			Help: "SMART attribute raw value, rendered as an unsigned integer where the format allows",
		}, []string{"device", "id", "name"}),
		threshold: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smart_attribute_threshold",
			Help: "SMART attribute failure threshold",
		}, []string{"device", "id", "name"}),
		temperature: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "disk_temperature_celsius",
			Help: "Current drive temperature in Celsius",
		}, []string{"device"}),
		errorCount: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scsi_error_count",
			Help: "SCSI error counter log page values",
		}, []string{"device", "page", "kind"}),
	}

	reg.MustRegister(&a.attribute, &a.worst, &a.raw, &a.threshold, &a.temperature, &a.errorCount)
	return a
}

// ObserveAttributes records every value/worst/threshold/raw gauge for a
// device's decoded SMART attribute table.
func (a *Adapter) ObserveAttributes(device string, attrs []*smart.Attribute) {
	for _, attr := range attrs {
		id := decimal(attr.ID)
		name := attr.Name()

		if v, ok := attr.Value(); ok {
			a.attribute.WithLabelValues(device, id, name).Set(float64(v))
		}
		if w, ok := attr.Worst(); ok {
			a.worst.WithLabelValues(device, id, name).Set(float64(w))
		}
		if attr.Thresh != nil {
			a.threshold.WithLabelValues(device, id, name).Set(float64(*attr.Thresh))
		}

		raw := smart.RenderRaw(attr)
		if v, ok := rawAsUint(raw); ok {
			a.raw.WithLabelValues(device, id, name).Set(v)
		}
	}
}

// rawAsUint extracts a numeric reading from raw where its Kind produces
// one plain scalar. A min/max temperature reports its current reading;
// other composite kinds (opt-lists, pairs) have no single natural scalar
// and are skipped.
func rawAsUint(raw smart.Raw) (float64, bool) {
	switch raw.Kind {
	case smart.RawKindDefault48, smart.RawKind64, smart.RawKindSeconds, smart.RawKindMinutes:
		return float64(raw.U64), true
	case smart.RawKindCelsius:
		return float64(raw.Celsius), true
	case smart.RawKindCelsiusMinMax:
		return float64(raw.CelsiusCur), true
	default:
		return 0, false
	}
}

// ObserveTemperature records a device's current SCSI temperature reading.
func (a *Adapter) ObserveTemperature(device string, celsius byte) {
	a.temperature.WithLabelValues(device).Set(float64(celsius))
}

// ObserveErrorCounters records a SCSI error-counter log page's decoded
// values, labeled by the page name and counter kind.
func (a *Adapter) ObserveErrorCounters(device, page string, counters map[int]uint64) {
	for kind, v := range counters {
		a.errorCount.WithLabelValues(device, page, decimal(byte(kind))).Set(float64(v))
	}
}

func decimal(b byte) string {
	if b == 0 {
		return "0"
	}
	var digits []byte
	for b > 0 {
		digits = append([]byte{'0' + b%10}, digits...)
		b /= 10
	}
	return string(digits)
}
