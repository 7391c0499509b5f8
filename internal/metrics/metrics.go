// Package metrics provides Prometheus metrics for the alert collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "alertcef"
)

// Collector metrics
var (
	// CyclesTotal counts completed polling cycles.
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "cycles_total",
			Help:      "Total completed polling cycles",
		},
	)

	// CycleDuration tracks polling cycle latency.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "cycle_duration_seconds",
			Help:      "Polling cycle duration in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	// TenantErrorsTotal counts tenant-scoped failures by stage.
	TenantErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "tenant_errors_total",
			Help:      "Tenant-scoped failures by pipeline stage",
		},
		[]string{"stage"},
	)

	// AlertsFetchedTotal counts alerts returned by the detection API.
	AlertsFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "alerts_fetched_total",
			Help:      "Total alerts fetched from the detection API",
		},
	)

	// AlertsSkippedTotal counts discarded alerts by reason.
	AlertsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "alerts_skipped_total",
			Help:      "Alerts discarded before persistence, by reason",
		},
		[]string{"reason"},
	)

	// AlertsPersistedTotal counts alerts written to file and database.
	AlertsPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "alerts_persisted_total",
			Help:      "Alerts appended to a log file and recorded in the database",
		},
	)

	// PersistFailuresTotal counts database inserts that failed after the
	// file append succeeded.
	PersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "persist_failures_total",
			Help:      "Database insert failures after a successful file append",
		},
	)

	// ArchiveFailuresTotal counts archive batch inserts that failed.
	ArchiveFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "archive_failures_total",
			Help:      "Failed archive batch inserts",
		},
	)
)

// Skip reasons for AlertsSkippedTotal.
const (
	SkipNoResource    = "no_resource"
	SkipUnknownDevice = "unknown_device"
	SkipDuplicate     = "duplicate"
)

// Tenant error stages for TenantErrorsTotal.
const (
	StageAuth  = "auth"
	StageFetch = "fetch"
)

// Shipper metrics
var (
	// ShippedLinesTotal counts CEF lines sent to the SIEM.
	ShippedLinesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shipper",
			Name:      "lines_total",
			Help:      "Total CEF lines transmitted over UDP",
		},
	)

	// ShippedFilesTotal counts files fully shipped and marked sent.
	ShippedFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shipper",
			Name:      "files_total",
			Help:      "Total log files marked sent",
		},
	)

	// ShipFailuresTotal counts files whose shipment aborted mid-way.
	ShipFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shipper",
			Name:      "failures_total",
			Help:      "Log files left unmarked after a transport failure",
		},
	)
)
