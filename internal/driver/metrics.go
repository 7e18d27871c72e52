/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package driver

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus metrics for the subscription driver.
// Instrumentation is optional; a nil *Metrics disables it.
type Metrics struct {
	framesReceived   *prometheus.CounterVec
	keepalivesEchoed *prometheus.CounterVec
	notifications    prometheus.Counter
	responseErrors   prometheus.Counter
	decodeErrors     prometheus.Counter
	streamActive     prometheus.Gauge
}

// newMetrics creates and registers driver metrics.
func newMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mempoolstream",
			Subsystem: "driver",
			Name:      "frames_received_total",
			Help:      "Total frames received from the feed",
		}, []string{"type"}),

		keepalivesEchoed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mempoolstream",
			Subsystem: "driver",
			Name:      "keepalives_echoed_total",
			Help:      "Total keep-alive control frames echoed back to the feed",
		}, []string{"type"}),

		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mempoolstream",
			Subsystem: "driver",
			Name:      "notifications_total",
			Help:      "Total pending-transaction notifications delivered",
		}),

		responseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mempoolstream",
			Subsystem: "driver",
			Name:      "response_errors_total",
			Help:      "Total error payloads received in responses",
		}),

		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mempoolstream",
			Subsystem: "driver",
			Name:      "decode_errors_total",
			Help:      "Total inbound frames that failed to decode",
		}),

		streamActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mempoolstream",
			Subsystem: "driver",
			Name:      "streams_active",
			Help:      "Number of subscription streams currently running",
		}),
	}

	reg.MustRegister(
		m.framesReceived,
		m.keepalivesEchoed,
		m.notifications,
		m.responseErrors,
		m.decodeErrors,
		m.streamActive,
	)
	return m
}
