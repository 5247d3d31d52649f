package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes used as the "outcome" label.
const (
	OutcomeApplied = "applied"
	OutcomeDryRun  = "dry_run"
	OutcomeFailed  = "failed"
)

var (
	// ImportsTotal counts import runs by format and outcome.
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_import_runs_total",
			Help: "Number of user import runs.",
		},
		[]string{"format", "outcome"},
	)

	// ImportDuration observes the wall time of an import run.
	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_import_duration_seconds",
			Help:    "Duration of user import runs in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	// RowsChanged counts applied row changes by action.
	RowsChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_import_rows_total",
			Help: "Number of user rows created, updated or deleted by imports.",
		},
		[]string{"action"},
	)

	// RowWarnings counts input rows skipped by the parser.
	RowWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_import_row_warnings_total",
		Help: "Number of input rows skipped with a warning.",
	})

	// CacheHits counts resolver read cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_import_resolver_cache_hits_total",
		Help: "Number of resolver lookups served from the cache.",
	})

	// CacheMisses counts resolver read cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_import_resolver_cache_misses_total",
		Help: "Number of resolver lookups that went to the database.",
	})

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_import_http_requests_total",
			Help: "Number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_import_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
