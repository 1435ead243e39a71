package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhinojosadev/cn-service/internal/config"
	"github.com/rhinojosadev/cn-service/internal/metrics"
	"github.com/rhinojosadev/cn-service/internal/phonetic"
	"github.com/rhinojosadev/cn-service/internal/server"
	"github.com/rhinojosadev/cn-service/internal/transcription"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "cn-service"
	serviceVersion    = "1.0.0"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary (without sensitive data)
	logger.Info("Configuration loaded",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
		slog.Bool("trim_enabled", cfg.Audio.TrimEnabled),
		slog.Float64("trim_threshold", cfg.Audio.TrimThreshold),
		slog.Int("max_upload_mb", cfg.Audio.MaxUploadMB),
		slog.String("transcription_endpoint", cfg.Transcription.Endpoint),
		slog.String("transcription_model", cfg.Transcription.Model),
		slog.String("default_language", cfg.Transcription.DefaultLanguage),
		slog.Bool("api_key_configured", cfg.Transcription.APIKey != ""),
		slog.String("log_level", cfg.Logging.Level),
	)

	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	transcriber, err := transcription.NewClient(transcription.Config{
		Endpoint:      cfg.Transcription.Endpoint,
		APIKey:        cfg.Transcription.APIKey,
		Model:         cfg.Transcription.Model,
		Timeout:       cfg.Transcription.GetTimeoutDuration(),
		MaxRetries:    cfg.Transcription.MaxRetries,
		MaxConcurrent: cfg.Transcription.MaxConcurrent,
	})
	if err != nil {
		logger.Error("Failed to create transcription client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Transcription client initialized",
		slog.String("endpoint", cfg.Transcription.Endpoint),
		slog.String("model", cfg.Transcription.Model),
	)

	converter := phonetic.NewConverter()

	httpServer := server.NewHTTPServer(cfg, logger, transcriber, converter, appMetrics)

	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	logger.Info("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	if err := transcriber.Close(); err != nil {
		logger.Error("Error closing transcription client", slog.String("error", err.Error()))
	}

	stats := transcriber.GetStats()
	logger.Info("Final transcription statistics",
		slog.Uint64("total_requests", stats.TotalRequests),
		slog.Uint64("success_requests", stats.SuccessRequests),
		slog.Uint64("failed_requests", stats.FailedRequests),
		slog.Uint64("total_retries", stats.TotalRetries),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
