// Package transcription implements the HTTP client for a Whisper-compatible
// speech-to-text endpoint. It sends multipart form data with the audio file
// and model parameters, retries with exponential backoff, and caps in-flight
// requests with a semaphore.
package transcription
