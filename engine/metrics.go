// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type storeMetrics struct {
	bytesWritten     prometheus.Counter
	bytesRead        prometheus.Counter
	sets             prometheus.Counter
	gets             prometheus.Counter
	removes          prometheus.Counter
	segmentRotations prometheus.Counter
	compactions      prometheus.Counter
	staleRecords     prometheus.Gauge
	segmentCount     prometheus.Gauge
}

func newStoreMetrics(reg prometheus.Registerer) *storeMetrics {
	return &storeMetrics{
		bytesWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_bytes_written",
			Help: "kvstore_bytes_written counts the bytes of log record (including the '#' terminator) appended to segment files.",
		}),
		bytesRead: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_bytes_read",
			Help: "kvstore_bytes_read counts the key and value bytes of the log records read back from segment files to answer GET.",
		}),
		sets: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_sets_total",
			Help: "kvstore_sets_total counts successful SET operations.",
		}),
		gets: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_gets_total",
			Help: "kvstore_gets_total counts GET operations, hit or miss.",
		}),
		removes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_removes_total",
			Help: "kvstore_removes_total counts successful RM operations.",
		}),
		segmentRotations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_segment_rotations_total",
			Help: "kvstore_segment_rotations_total counts how many times a new active segment was created.",
		}),
		compactions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvstore_compactions_total",
			Help: "kvstore_compactions_total counts how many times the log was compacted.",
		}),
		staleRecords: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "kvstore_stale_records",
			Help: "kvstore_stale_records is the current count of overwritten/removed records in the log (the 'unused' counter), which triggers compaction.",
		}),
		segmentCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "kvstore_segment_count",
			Help: "kvstore_segment_count is the current number of live segment files on disk.",
		}),
	}
}
