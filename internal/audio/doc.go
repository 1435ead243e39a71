// Package audio implements an explicit binary WAV codec and PCM silence
// trimming. The trimmer removes near-silent leading/trailing regions from
// integer PCM input while preserving a 100 ms margin and the exact container
// format of the input.
package audio
