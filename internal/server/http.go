package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhinojosadev/cn-service/internal/audio"
	"github.com/rhinojosadev/cn-service/internal/config"
	"github.com/rhinojosadev/cn-service/internal/metrics"
	"github.com/rhinojosadev/cn-service/internal/phonetic"
	"github.com/rhinojosadev/cn-service/internal/transcription"
)

const (
	serviceName    = "cn-service"
	serviceVersion = "1.0.0"
)

// Transcriber is the speech-to-text collaborator consumed by the HTTP API.
// *transcription.Client implements it; tests substitute stubs.
type Transcriber interface {
	Transcribe(ctx context.Context, request *transcription.Request) (*transcription.Result, error)
	GetStats() transcription.ClientStats
}

// HTTPServer provides the transcription API and monitoring endpoints.
type HTTPServer struct {
	server      *http.Server
	logger      *slog.Logger
	config      *config.Config
	transcriber Transcriber
	converter   *phonetic.Converter
	metrics     *metrics.Metrics

	startTime time.Time
}

// NewHTTPServer creates a new HTTP API server.
func NewHTTPServer(cfg *config.Config, logger *slog.Logger,
	transcriber Transcriber, converter *phonetic.Converter, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:      logger,
		config:      cfg,
		transcriber: transcriber,
		converter:   converter,
		metrics:     m,
		startTime:   time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.GetReadTimeout(),
		WriteTimeout: cfg.HTTP.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes.
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Transcription endpoint
	mux.HandleFunc("/transcribe", h.withMetrics("/transcribe", h.handleTranscribe))

	// Health check endpoint
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// Configuration endpoint
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))

	// Statistics endpoint
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection.
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Capture the status code written by the handler
		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := strconv.Itoa(ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server.
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server.
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleTranscribe implements the POST /transcribe endpoint. It accepts
// multipart/form-data with an "audio" file plus optional "language",
// "temperature" and "api_key" fields, trims silence from WAV uploads, and
// returns the transcript with its pinyin rendering.
func (h *HTTPServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	maxBytes := h.config.Audio.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form field 'audio'")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file: "+err.Error())
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}
	h.metrics.RecordUpload(len(raw))

	language := r.FormValue("language")
	if language == "" {
		language = h.config.Transcription.DefaultLanguage
	}

	temperature := 0.0
	if v := r.FormValue("temperature"); v != "" {
		temperature, err = strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid temperature value")
			return
		}
	}

	requestID := uuid.NewString()
	isWAV := audio.IsWAV(raw)
	processed := h.trimUpload(raw, isWAV, requestID)

	filename := header.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	startTime := time.Now()
	h.metrics.RecordTranscriptionRequest()

	result, err := h.transcriber.Transcribe(r.Context(), &transcription.Request{
		RequestID:   requestID,
		Audio:       processed,
		Filename:    filename,
		Language:    language,
		Temperature: temperature,
		APIKey:      r.FormValue("api_key"),
	})
	if err != nil {
		h.metrics.RecordTranscriptionFailure(time.Since(startTime).Seconds())

		if errors.Is(err, transcription.ErrMissingAPIKey) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("Transcription request failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "transcription error: "+err.Error())
		return
	}
	h.metrics.RecordTranscriptionSuccess(time.Since(startTime).Seconds())

	text := strings.TrimSpace(result.Text)
	pinyinText := ""
	if text != "" {
		pinyinText = h.converter.Render(text)
	}

	h.logger.Info("Transcription completed",
		slog.String("request_id", requestID),
		slog.String("filename", header.Filename),
		slog.Int("upload_bytes", len(raw)),
		slog.Int("sent_bytes", len(processed)),
		slog.Bool("wav_input", isWAV),
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"text":         text,
		"pinyin":       pinyinText,
		"filename":     header.Filename,
		"content_type": header.Header.Get("Content-Type"),
		// Reports the container signature check, not whether bytes were
		// actually removed.
		"trimmed": isWAV,
	})
}

// trimUpload runs the silence trimmer over WAV uploads. Trimming is
// best-effort cleanup: a parse failure keeps the original bytes.
func (h *HTTPServer) trimUpload(raw []byte, isWAV bool, requestID string) []byte {
	if !isWAV || !h.config.Audio.TrimEnabled {
		return raw
	}

	trimmed, err := audio.TrimSilenceThreshold(raw, h.config.Audio.TrimThreshold)
	if err != nil {
		h.metrics.RecordTrimError()
		h.logger.Warn("Silence trim failed, passing original audio through",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return raw
	}

	if len(trimmed) >= len(raw) {
		h.metrics.RecordTrimPassthrough()
		return trimmed
	}

	h.metrics.RecordTrimApplied(removedSeconds(raw, trimmed))
	return trimmed
}

// removedSeconds reports how much playing time the trimmer removed.
func removedSeconds(original, trimmed []byte) float64 {
	before, err := audio.Duration(original)
	if err != nil {
		return 0
	}
	after, err := audio.Duration(trimmed)
	if err != nil {
		return 0
	}
	return before - after
}

// handleHealth implements the /health endpoint.
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uptime := time.Since(h.startTime)
	transcriptionStats := h.transcriber.GetStats()

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    serviceName,
			"version": serviceVersion,
		},
		"components": map[string]interface{}{
			"transcription": map[string]interface{}{
				"status":          "running",
				"total_requests":  transcriptionStats.TotalRequests,
				"success_rate":    transcriptionStats.SuccessRate,
				"active_requests": transcriptionStats.ActiveRequests,
			},
		},
	}

	writeJSON(w, http.StatusOK, health)
}

// handleConfig implements the /config endpoint.
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Return sanitized configuration (the API key is omitted)
	sanitizedConfig := map[string]interface{}{
		"http": map[string]interface{}{
			"port":          h.config.HTTP.Port,
			"address":       h.config.HTTP.Address,
			"read_timeout":  h.config.HTTP.ReadTimeout,
			"write_timeout": h.config.HTTP.WriteTimeout,
		},
		"audio": map[string]interface{}{
			"trim_enabled":   h.config.Audio.TrimEnabled,
			"trim_threshold": h.config.Audio.TrimThreshold,
			"max_upload_mb":  h.config.Audio.MaxUploadMB,
		},
		"transcription": map[string]interface{}{
			"endpoint":         h.config.Transcription.Endpoint,
			"model":            h.config.Transcription.Model,
			"default_language": h.config.Transcription.DefaultLanguage,
			"timeout":          h.config.Transcription.Timeout,
			"max_retries":      h.config.Transcription.MaxRetries,
			"max_concurrent":   h.config.Transcription.MaxConcurrent,
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	writeJSON(w, http.StatusOK, sanitizedConfig)
}

// handleStats implements the /stats endpoint.
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats := map[string]interface{}{
		"uptime":        time.Since(h.startTime).String(),
		"timestamp":     time.Now().UTC(),
		"transcription": h.transcriber.GetStats(),
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleRoot implements the / endpoint with API documentation.
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	apiDoc := map[string]interface{}{
		"service": "Chinese Transcription Service",
		"version": serviceVersion,
		"endpoints": map[string]interface{}{
			"POST /transcribe": "Transcribe an uploaded audio clip (multipart: audio, language, temperature, api_key)",
			"GET /health":      "Service health check",
			"GET /config":      "Get service configuration",
			"GET /stats":       "Get service statistics",
			"GET /metrics":     "Prometheus metrics",
			"GET /":            "API documentation",
		},
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, apiDoc)
}
