// Package metrics exposes Prometheus collectors for the ingestion pipeline.
// Callers may serve them or leave them unscraped; the pipeline only
// increments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatementsParsed counts parse runs by terminal status: "ok" or the
	// error taxonomy kind.
	StatementsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growmoney_statements_parsed_total",
		Help: "Statement parse runs by terminal status.",
	}, []string{"status"})

	// RowsRejected counts individual rows dropped by the normalizer.
	RowsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growmoney_rows_rejected_total",
		Help: "Statement rows dropped because date or amount failed to normalize.",
	})

	// SignConflicts counts rows whose stated type label disagreed with the
	// numeric sign.
	SignConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growmoney_sign_conflicts_total",
		Help: "Rows where the stated transaction type disagreed with the amount sign.",
	})

	// ParseDuration observes end-to-end parse latency per file.
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "growmoney_parse_duration_seconds",
		Help:    "End-to-end statement parse duration.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)
