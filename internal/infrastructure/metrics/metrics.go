package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "achledger"

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	// Transfer metrics
	TransfersSubmitted prometheus.Counter
	TransfersCancelled prometheus.Counter
	TransferAmount     prometheus.Histogram
	TransferErrors     *prometheus.CounterVec

	// Entry metrics
	EntriesClaimed prometheus.Counter
	EntriesFailed  prometheus.Counter
	ClaimConflicts prometheus.Counter

	// Batch and file metrics
	AssemblyRuns     *prometheus.CounterVec
	AssemblyDuration prometheus.Histogram
	FilesGenerated   prometheus.Counter
	FilesTransmitted prometheus.Counter
	FilesFailed      prometheus.Counter
	FileAmountCents  *prometheus.CounterVec
	EncoderWarnings  prometheus.Counter

	// Calendar metrics
	HolidayLoads *prometheus.CounterVec

	// API metrics
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	HTTPInFlight   prometheus.Gauge
	RateLimitHits  *prometheus.CounterVec
	IdempotentHits prometheus.Counter

	// Storage metrics
	DBRetries   prometheus.Counter
	RedisErrors *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		TransfersSubmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_submitted_total",
			Help:      "Total number of transfers submitted",
		}),
		TransfersCancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_cancelled_total",
			Help:      "Total number of transfers cancelled",
		}),
		TransferAmount: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_amount",
			Help:      "Submitted transfer amounts",
			Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_errors_total",
			Help:      "Rejected or failed transfer submissions by kind",
		}, []string{"kind"}),

		EntriesClaimed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_claimed_total",
			Help:      "Entries moved from PENDING to PROCESSED",
		}),
		EntriesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_failed_total",
			Help:      "Entries moved to FAILED",
		}),
		ClaimConflicts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claim_conflicts_total",
			Help:      "Batch claims that lost a race for at least one entry",
		}),

		AssemblyRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assembly_runs_total",
			Help:      "Batch assembly runs by result",
		}, []string{"result"}),
		AssemblyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assembly_duration_seconds",
			Help:      "Duration of batch assembly runs",
			Buckets:   prometheus.DefBuckets,
		}),
		FilesGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_generated_total",
			Help:      "NACHA files generated",
		}),
		FilesTransmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_transmitted_total",
			Help:      "NACHA files confirmed as transmitted",
		}),
		FilesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "NACHA files whose transmission failed",
		}),
		FileAmountCents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_amount_cents_total",
			Help:      "Sum of amounts written into NACHA files",
		}, []string{"direction"}),
		EncoderWarnings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encoder_warnings_total",
			Help:      "Fields truncated while encoding NACHA files",
		}),

		HolidayLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holiday_loads_total",
			Help:      "Holiday set refresh attempts by result",
		}, []string{"result"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"path"}),
		IdempotentHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Requests answered from the idempotency store",
		}),

		DBRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_retries_total",
			Help:      "Transactions retried after a deadlock or serialization failure",
		}),
		RedisErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redis_errors_total",
			Help:      "Redis operation errors",
		}, []string{"operation"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_published_total",
			Help:      "Outbox events published by type",
		}, []string{"event_type"}),
	}
}

// TransferSubmitted records an accepted transfer.
func (m *Metrics) TransferSubmitted(amount float64) {
	if m == nil {
		return
	}
	m.TransfersSubmitted.Inc()
	m.TransferAmount.Observe(amount)
}

// TransferRejected records a failed submission.
func (m *Metrics) TransferRejected(kind string) {
	if m == nil {
		return
	}
	m.TransferErrors.WithLabelValues(kind).Inc()
}

// TransferCancelled records a cancellation.
func (m *Metrics) TransferCancelled() {
	if m == nil {
		return
	}
	m.TransfersCancelled.Inc()
}

// Claimed records entries claimed into a file and whether the claim lost
// part of its selection to a concurrent run.
func (m *Metrics) Claimed(n int, conflict bool) {
	if m == nil {
		return
	}
	m.EntriesClaimed.Add(float64(n))
	if conflict {
		m.ClaimConflicts.Inc()
	}
}

// EntriesMarkedFailed records entries moved to FAILED.
func (m *Metrics) EntriesMarkedFailed(n int) {
	if m == nil {
		return
	}
	m.EntriesFailed.Add(float64(n))
}

// FileGenerated records a generated file and its totals.
func (m *Metrics) FileGenerated(debitCents, creditCents int64, warnings int) {
	if m == nil {
		return
	}
	m.FilesGenerated.Inc()
	m.FileAmountCents.WithLabelValues("debit").Add(float64(debitCents))
	m.FileAmountCents.WithLabelValues("credit").Add(float64(creditCents))
	m.EncoderWarnings.Add(float64(warnings))
}

// FileTransmitted records a confirmed transmission.
func (m *Metrics) FileTransmitted() {
	if m == nil {
		return
	}
	m.FilesTransmitted.Inc()
}

// FileFailed records a failed transmission.
func (m *Metrics) FileFailed() {
	if m == nil {
		return
	}
	m.FilesFailed.Inc()
}

// AssemblyFinished records one assembly run.
func (m *Metrics) AssemblyFinished(result string, seconds float64) {
	if m == nil {
		return
	}
	m.AssemblyRuns.WithLabelValues(result).Inc()
	m.AssemblyDuration.Observe(seconds)
}

// HolidayLoad records a holiday refresh attempt.
func (m *Metrics) HolidayLoad(result string) {
	if m == nil {
		return
	}
	m.HolidayLoads.WithLabelValues(result).Inc()
}

// Retried records a storage retry.
func (m *Metrics) Retried() {
	if m == nil {
		return
	}
	m.DBRetries.Inc()
}

// RedisError records a failed Redis operation.
func (m *Metrics) RedisError(operation string) {
	if m == nil {
		return
	}
	m.RedisErrors.WithLabelValues(operation).Inc()
}

// EventPublished records a published outbox event.
func (m *Metrics) EventPublished(eventType string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RequestStarted tracks an in-flight HTTP request. Call the returned func
// when it finishes.
func (m *Metrics) RequestStarted() func() {
	if m == nil {
		return func() {}
	}
	m.HTTPInFlight.Inc()
	return m.HTTPInFlight.Dec
}

// RequestFinished records one HTTP request against its route pattern.
func (m *Metrics) RequestFinished(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// RateLimited records a request rejected by the rate limiter.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimitHits.WithLabelValues(route).Inc()
}

// IdempotentReplay records a response served from the idempotency store.
func (m *Metrics) IdempotentReplay() {
	if m == nil {
		return
	}
	m.IdempotentHits.Inc()
}
