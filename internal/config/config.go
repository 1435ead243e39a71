package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// HTTPConfig contains HTTP API server configuration.
type HTTPConfig struct {
	Port         int    `yaml:"port"`
	Address      string `yaml:"address"`
	ReadTimeout  int    `yaml:"read_timeout"`  // seconds
	WriteTimeout int    `yaml:"write_timeout"` // seconds
}

// AudioConfig contains silence trimming parameters.
type AudioConfig struct {
	TrimEnabled   bool    `yaml:"trim_enabled"`
	TrimThreshold float64 `yaml:"trim_threshold"`
	MaxUploadMB   int     `yaml:"max_upload_mb"`
}

// TranscriptionConfig contains transcription API configuration.
type TranscriptionConfig struct {
	Endpoint        string `yaml:"endpoint"`
	APIKey          string `yaml:"api_key"` // optional, see Load
	Model           string `yaml:"model"`
	DefaultLanguage string `yaml:"default_language"`
	Timeout         int    `yaml:"timeout"` // seconds
	MaxRetries      int    `yaml:"max_retries"`
	MaxConcurrent   int    `yaml:"max_concurrent"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file. When the file carries no
// transcription API key, the OPENAI_API_KEY environment variable is used.
// A key supplied on an individual request still takes precedence over both.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if config.Transcription.APIKey == "" {
		config.Transcription.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Transcription.Validate(); err != nil {
		return fmt.Errorf("transcription config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration.
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if h.ReadTimeout < 1 {
		return fmt.Errorf("read_timeout must be at least 1 second, got %d", h.ReadTimeout)
	}

	if h.WriteTimeout < 1 {
		return fmt.Errorf("write_timeout must be at least 1 second, got %d", h.WriteTimeout)
	}

	return nil
}

// Validate validates audio configuration. trim_threshold is deliberately not
// range-checked: out-of-range values degrade to passthrough behavior in the
// trimmer rather than being rejected here.
func (a *AudioConfig) Validate() error {
	if a.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be at least 1, got %d", a.MaxUploadMB)
	}

	return nil
}

// Validate validates transcription configuration. The API key may be empty:
// requests can carry their own key in the api_key form field.
func (t *TranscriptionConfig) Validate() error {
	if t.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	if t.DefaultLanguage == "" {
		return fmt.Errorf("default_language cannot be empty")
	}

	if t.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", t.Timeout)
	}

	if t.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", t.MaxRetries)
	}

	if t.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", t.MaxConcurrent)
	}

	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetReadTimeout returns the HTTP read timeout as a time.Duration.
func (h *HTTPConfig) GetReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the HTTP write timeout as a time.Duration.
func (h *HTTPConfig) GetWriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeout) * time.Second
}

// GetTimeoutDuration returns the transcription timeout as a time.Duration.
func (t *TranscriptionConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// MaxUploadBytes returns the upload limit in bytes.
func (a *AudioConfig) MaxUploadBytes() int64 {
	return int64(a.MaxUploadMB) << 20
}
