// Package metrics provides Prometheus metrics for the audience-profile pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion metrics
	documentsParsed    prometheus.Counter
	documentsMalformed prometheus.Counter
	documentsDuplicate prometheus.Counter
	profileIDMismatch  prometheus.Counter

	// Derivation quality metrics
	branchUnavailable *prometheus.CounterVec
	joinMisses        *prometheus.CounterVec
	referenceRejects  *prometheus.CounterVec

	// Batch metrics
	reportsBuilt  prometheus.Counter
	batchDuration prometheus.Histogram
	batchSize     prometheus.Gauge

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Session store metrics
	storeRows          prometheus.Gauge
	storeSnapshotCount prometheus.Counter

	// Live-metrics enrichment
	enrichFetches *prometheus.CounterVec
	enrichLatency prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "persona",
		subsystem:        "audience",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // metric registration is one long list
	auto := promauto.With(m.registry)

	// Ingestion metrics
	m.documentsParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "documents_parsed_total",
		Help:      "Total number of influencer documents successfully parsed",
	})

	m.documentsMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "documents_malformed_total",
		Help:      "Total number of documents rejected as unparseable",
	})

	m.documentsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "documents_duplicate_total",
		Help:      "Total number of duplicate documents dropped within a batch",
	})

	m.profileIDMismatch = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_id_mismatch_total",
		Help:      "Documents whose filename id disagrees with the embedded username",
	})

	// Derivation quality metrics
	m.branchUnavailable = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "branch_unavailable_total",
			Help:      "Derivation branches that produced no result, by branch",
		},
		[]string{"branch"},
	)

	m.joinMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "reference_join_miss_total",
			Help:      "Keys absent from a reference table during aggregation (data quality)",
		},
		[]string{"table"},
	)

	m.referenceRejects = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "reference_rows_rejected_total",
			Help:      "Reference table rows skipped while loading, by table",
		},
		[]string{"table"},
	)

	// Batch metrics
	m.reportsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_built_total",
		Help:      "Total number of per-influencer summary rows built",
	})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_milliseconds",
		Help:      "Wall time of a full batch run in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.batchSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_size",
		Help:      "Number of documents in the most recent batch",
	})

	// Queue metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the document queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum document queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of documents enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of documents dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of failed enqueue attempts",
	})

	// Worker metrics
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of pipeline workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Per-document processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker processing errors",
	})

	// Session store metrics
	m.storeRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_rows",
		Help:      "Summary rows held in the session report store",
	})

	m.storeSnapshotCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_snapshots_total",
		Help:      "Total number of report snapshots published",
	})

	// Live-metrics enrichment
	m.enrichFetches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "enrich_fetch_total",
			Help:      "Live profile-metric fetch attempts by outcome",
		},
		[]string{"outcome"},
	)

	m.enrichLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrich_fetch_latency_milliseconds",
		Help:      "Live profile-metric fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordDocumentParsed increments the parsed documents counter.
func RecordDocumentParsed() {
	globalManager.documentsParsed.Inc()
}

// RecordDocumentMalformed increments the malformed documents counter.
func RecordDocumentMalformed() {
	globalManager.documentsMalformed.Inc()
}

// RecordDocumentDuplicate increments the duplicate documents counter.
func RecordDocumentDuplicate() {
	globalManager.documentsDuplicate.Inc()
}

// RecordProfileIDMismatch increments the filename/username mismatch counter.
func RecordProfileIDMismatch() {
	globalManager.profileIDMismatch.Inc()
}

// RecordBranchUnavailable counts a derivation branch with no result.
func RecordBranchUnavailable(branch string) {
	globalManager.branchUnavailable.WithLabelValues(branch).Inc()
}

// RecordJoinMiss counts a reference-table key miss.
func RecordJoinMiss(table string) {
	globalManager.joinMisses.WithLabelValues(table).Inc()
}

// RecordReferenceRowRejected counts a skipped reference-table row.
func RecordReferenceRowRejected(table string) {
	globalManager.referenceRejects.WithLabelValues(table).Inc()
}

// RecordReportBuilt increments the summary-row counter.
func RecordReportBuilt() {
	globalManager.reportsBuilt.Inc()
}

// RecordBatchDuration records batch wall time in milliseconds.
func RecordBatchDuration(latencyMs float64) {
	globalManager.batchDuration.Observe(latencyMs)
}

// UpdateBatchSize sets the size of the most recent batch.
func UpdateBatchSize(size int) {
	globalManager.batchSize.Set(float64(size))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts a successful enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue counts a successful dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError counts a failed enqueue attempt.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-document latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker processing error.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// UpdateStoreRows sets the session store row gauge.
func UpdateStoreRows(count int) {
	globalManager.storeRows.Set(float64(count))
}

// RecordStoreSnapshot counts a published report snapshot.
func RecordStoreSnapshot() {
	globalManager.storeSnapshotCount.Inc()
}

// RecordEnrichFetch counts a live-metrics fetch by outcome (ok, error, timeout, disabled).
func RecordEnrichFetch(outcome string) {
	globalManager.enrichFetches.WithLabelValues(outcome).Inc()
}

// RecordEnrichLatency records live-metrics fetch latency in milliseconds.
func RecordEnrichLatency(latencyMs float64) {
	globalManager.enrichLatency.Observe(latencyMs)
}

// GetRegistry returns the custom Prometheus registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
