// Package server implements the HTTP API: the /transcribe upload endpoint
// plus health, configuration, statistics and Prometheus metrics endpoints.
package server
