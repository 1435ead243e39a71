// Package config provides configuration loading and validation for the
// Chinese transcription service. It handles YAML-based configuration with
// struct validation and environment fallback for the transcription API key.
package config
