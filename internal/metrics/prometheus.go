// Package metrics defines the Prometheus instrumentation for the Chinese
// transcription service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the service.
type Metrics struct {
	// Upload metrics
	UploadsReceived prometheus.Counter
	UploadSize      prometheus.Histogram

	// Silence trimming metrics
	TrimApplied     prometheus.Counter
	TrimPassthrough prometheus.Counter
	TrimErrors      prometheus.Counter
	TrimmedSeconds  prometheus.Histogram

	// Transcription metrics
	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	TranscriptionDuration  prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics on the default
// registry. Call it once per process.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the metric set on an explicit registerer. Tests
// use this with a private registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Upload metrics
		UploadsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "cn_uploads_received_total",
			Help: "Total number of audio uploads received",
		}),
		UploadSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cn_upload_size_bytes",
			Help:    "Size of uploaded audio files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),

		// Silence trimming metrics
		TrimApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "cn_trim_applied_total",
			Help: "Total number of uploads that were silence-trimmed",
		}),
		TrimPassthrough: factory.NewCounter(prometheus.CounterOpts{
			Name: "cn_trim_passthrough_total",
			Help: "Total number of uploads passed through the trimmer unchanged",
		}),
		TrimErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "cn_trim_errors_total",
			Help: "Total number of trim attempts that failed to parse the container",
		}),
		TrimmedSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cn_trimmed_audio_seconds",
			Help:    "Seconds of silence removed per trimmed upload",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1.5 minutes
		}),

		// Transcription metrics
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "cn_transcription_requests_total",
			Help: "Total number of transcription requests sent",
		}),
		TranscriptionSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "cn_transcription_successes_total",
			Help: "Total number of successful transcription requests",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cn_transcription_failures_total",
			Help: "Total number of failed transcription requests",
		}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cn_transcription_duration_seconds",
			Help:    "Duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),

		// HTTP API metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cn_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cn_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cn_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordUpload records a received audio upload.
func (m *Metrics) RecordUpload(sizeBytes int) {
	m.UploadsReceived.Inc()
	m.UploadSize.Observe(float64(sizeBytes))
}

// RecordTrimApplied records a trim that shortened the audio.
func (m *Metrics) RecordTrimApplied(removedSeconds float64) {
	m.TrimApplied.Inc()
	m.TrimmedSeconds.Observe(removedSeconds)
}

// RecordTrimPassthrough records a trim attempt that left the audio unchanged.
func (m *Metrics) RecordTrimPassthrough() {
	m.TrimPassthrough.Inc()
}

// RecordTrimError records a trim attempt that failed to parse the container.
func (m *Metrics) RecordTrimError() {
	m.TrimErrors.Inc()
}

// RecordTranscriptionRequest increments the transcription requests counter.
func (m *Metrics) RecordTranscriptionRequest() {
	m.TranscriptionRequests.Inc()
}

// RecordTranscriptionSuccess records a successful transcription.
func (m *Metrics) RecordTranscriptionSuccess(durationSeconds float64) {
	m.TranscriptionSuccesses.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordTranscriptionFailure records a failed transcription.
func (m *Metrics) RecordTranscriptionFailure(durationSeconds float64) {
	m.TranscriptionFailures.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error.
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
