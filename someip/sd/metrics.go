/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package sd

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the optional Prometheus collectors ReadWithMetrics reports
// through. Construct with NewMetrics and pass to ReadWithMetrics; Read itself
// never reports metrics, matching the nil-safe optional-registerer pattern
// used by someip/tppool.
type Metrics struct {
	unknownDiscardableTotal prometheus.Counter
}

// NewMetrics registers the package's counters against reg. If reg is nil,
// the returned Metrics is inert.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		unknownDiscardableTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "someip_sd_unknown_discardable_total",
			Help: "Total number of unrecognized discardable SD options decoded.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.unknownDiscardableTotal)
	}
	return m
}
