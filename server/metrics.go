// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package server

import (
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics tracks connection and request counters via Prometheus, and
// keeps a running latency histogram via HdrHistogram: a cheap,
// allocation-free way to retain percentiles without Prometheus's own
// (coarser, bucket-based) histogram type.
type serverMetrics struct {
	connectionsAccepted prometheus.Counter
	requestsHandled     prometheus.Counter
	requestErrors       prometheus.Counter

	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	return &serverMetrics{
		connectionsAccepted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_server_connections_accepted_total",
			Help: "kvstore_server_connections_accepted_total counts accepted client connections.",
		}),
		requestsHandled: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_server_requests_handled_total",
			Help: "kvstore_server_requests_handled_total counts requests that received a response.",
		}),
		requestErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_server_request_errors_total",
			Help: "kvstore_server_request_errors_total counts requests that could not be framed, decoded, or executed.",
		}),
		// 1 microsecond to 10 seconds, 3 significant figures.
		hist: hdrhistogram.New(1, 10*time.Second.Microseconds(), 3),
	}
}

func (m *serverMetrics) recordLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.hist.RecordValue(d.Microseconds())
}

// LatencySnapshot reports p50/p99 request latency in microseconds for
// diagnostics endpoints or periodic logging.
func (m *serverMetrics) LatencySnapshot() (p50, p99 int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hist.ValueAtQuantile(50.0), m.hist.ValueAtQuantile(99.0)
}
