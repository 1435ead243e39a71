package audio

import (
	"bytes"
	"errors"
	"testing"
)

// buildWAV encodes flat samples with the given format parameters.
func buildWAV(format Format, samples []int64) []byte {
	return Encode(format, encodeSamples(samples, format.SampleWidth))
}

func mono16(sampleRate int, samples []int64) []byte {
	return buildWAV(Format{AudioFormat: formatPCM, Channels: 1, SampleRate: sampleRate, SampleWidth: 2}, samples)
}

// silenceThenTone builds prefix zeros, a loud plateau, then suffix zeros.
func silenceThenTone(prefix, loud, suffix int, amplitude int64) []int64 {
	samples := make([]int64, 0, prefix+loud+suffix)
	for i := 0; i < prefix; i++ {
		samples = append(samples, 0)
	}
	for i := 0; i < loud; i++ {
		samples = append(samples, amplitude)
	}
	for i := 0; i < suffix; i++ {
		samples = append(samples, 0)
	}
	return samples
}

func TestTrimSilenceMarginMath(t *testing.T) {
	// 4000 zeros + 2000 samples at half amplitude + 4000 zeros at 8kHz.
	// margin = 800 samples, so output = 800 + 2000 + 800 = 3600 samples.
	wav := mono16(8000, silenceThenTone(4000, 2000, 4000, 16384))

	trimmed, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("TrimSilence failed: %v", err)
	}

	_, pcm, err := Decode(trimmed)
	if err != nil {
		t.Fatalf("Decode of trimmed output failed: %v", err)
	}

	if got := len(pcm) / 2; got != 3600 {
		t.Errorf("expected 3600 samples after trim, got %d", got)
	}
}

func TestTrimSilenceMarginInvariant(t *testing.T) {
	tests := []struct {
		name             string
		prefix, suffix   int
		wantLead, wantTail int
	}{
		{"long edges clamp to margin", 4000, 4000, 800, 800},
		{"short prefix kept whole", 300, 4000, 300, 800},
		{"short suffix kept whole", 4000, 500, 800, 500},
		{"no edge silence", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wav := mono16(8000, silenceThenTone(tt.prefix, 2000, tt.suffix, 16384))

			trimmed, err := TrimSilence(wav)
			if err != nil {
				t.Fatalf("TrimSilence failed: %v", err)
			}

			_, pcm, err := Decode(trimmed)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			samples := decodeSamples(pcm, 2)

			lead := 0
			for lead < len(samples) && samples[lead] == 0 {
				lead++
			}
			tail := 0
			for tail < len(samples) && samples[len(samples)-1-tail] == 0 {
				tail++
			}

			if lead != tt.wantLead {
				t.Errorf("leading silence: expected %d samples, got %d", tt.wantLead, lead)
			}
			if tail != tt.wantTail {
				t.Errorf("trailing silence: expected %d samples, got %d", tt.wantTail, tail)
			}
		})
	}
}

func TestTrimSilenceAllBelowThreshold(t *testing.T) {
	// Normalization divides by the peak, so the loudest sample always maps
	// to 1.0. A threshold of 1.0 is therefore never exceeded and the input
	// must come back byte-identically.
	samples := make([]int64, 5000)
	for i := range samples {
		samples[i] = 10
	}
	wav := mono16(8000, samples)

	trimmed, err := TrimSilenceThreshold(wav, 1.0)
	if err != nil {
		t.Fatalf("TrimSilenceThreshold failed: %v", err)
	}

	if !bytes.Equal(trimmed, wav) {
		t.Error("expected all-silent input to pass through unchanged")
	}
}

func TestTrimSilenceZeroThreshold(t *testing.T) {
	// threshold <= 0 marks every non-zero sample loud; the margin math
	// still applies around the non-zero region.
	wav := mono16(8000, silenceThenTone(2000, 1000, 2000, 5))

	trimmed, err := TrimSilenceThreshold(wav, 0)
	if err != nil {
		t.Fatalf("TrimSilenceThreshold failed: %v", err)
	}

	_, pcm, err := Decode(trimmed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := len(pcm) / 2; got != 2600 {
		t.Errorf("expected 2600 samples, got %d", got)
	}
}

func TestTrimSilenceDigitalSilence(t *testing.T) {
	// All-zero buffer: normalization divisor falls back to 1, the mask is
	// empty, and the original bytes come back.
	wav := mono16(8000, make([]int64, 5000))

	trimmed, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("TrimSilence failed: %v", err)
	}

	if !bytes.Equal(trimmed, wav) {
		t.Error("expected digital silence to pass through unchanged")
	}
}

func TestTrimSilenceUnsupportedWidthPassthrough(t *testing.T) {
	// 24-bit samples are outside the supported {1, 2, 4} byte widths.
	format := Format{AudioFormat: formatPCM, Channels: 1, SampleRate: 8000, SampleWidth: 3}
	pcm := make([]byte, 3*1000)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	wav := Encode(format, pcm)

	trimmed, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("TrimSilence failed: %v", err)
	}

	if !bytes.Equal(trimmed, wav) {
		t.Error("expected unsupported sample width to pass through unchanged")
	}
}

func TestTrimSilenceFloatPCMPassthrough(t *testing.T) {
	format := Format{AudioFormat: formatIEEEFloat, Channels: 1, SampleRate: 8000, SampleWidth: 4}
	wav := Encode(format, make([]byte, 4*1000))

	trimmed, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("TrimSilence failed: %v", err)
	}

	if !bytes.Equal(trimmed, wav) {
		t.Error("expected float PCM to pass through unchanged")
	}
}

func TestTrimSilenceMalformed(t *testing.T) {
	_, err := TrimSilence([]byte("RIFF\x10\x00\x00\x00WAVEjunk"))
	if err == nil {
		t.Fatal("expected error for malformed container")
	}

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("expected *FormatError, got %T", err)
	}
}

func TestTrimSilenceHeaderPreservation(t *testing.T) {
	// Stereo 16-bit at 44.1kHz: the output container must carry identical
	// format fields.
	format := Format{AudioFormat: formatPCM, Channels: 2, SampleRate: 44100, SampleWidth: 2}
	wav := buildWAV(format, silenceThenTone(10000, 4000, 10000, 16000))

	trimmed, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("TrimSilence failed: %v", err)
	}

	outFormat, _, err := Decode(trimmed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if outFormat != format {
		t.Errorf("format changed: %+v != %+v", outFormat, format)
	}
}

func TestTrimSilenceNeverGrows(t *testing.T) {
	inputs := [][]int64{
		silenceThenTone(0, 100, 0, 16000),
		silenceThenTone(50, 100, 50, 16000),
		silenceThenTone(5000, 100, 5000, 16000),
		make([]int64, 200),
	}

	for _, samples := range inputs {
		wav := mono16(8000, samples)
		trimmed, err := TrimSilence(wav)
		if err != nil {
			t.Fatalf("TrimSilence failed: %v", err)
		}
		if len(trimmed) > len(wav) {
			t.Errorf("output grew from %d to %d bytes", len(wav), len(trimmed))
		}
	}
}

func TestTrimSilenceIdempotent(t *testing.T) {
	wav := mono16(8000, silenceThenTone(4000, 2000, 4000, 16384))

	once, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("first trim failed: %v", err)
	}

	twice, err := TrimSilence(once)
	if err != nil {
		t.Fatalf("second trim failed: %v", err)
	}

	// After one pass the remaining edge silence equals the margin, so a
	// second pass finds the same window and produces identical bytes.
	if !bytes.Equal(once, twice) {
		t.Error("expected second trim to leave output unchanged")
	}
}

func TestTrimSilence8Bit(t *testing.T) {
	format := Format{AudioFormat: formatPCM, Channels: 1, SampleRate: 8000, SampleWidth: 1}
	wav := buildWAV(format, silenceThenTone(2000, 1000, 2000, 64))

	trimmed, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("TrimSilence failed: %v", err)
	}

	outFormat, pcm, err := Decode(trimmed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if outFormat.SampleWidth != 1 {
		t.Errorf("expected 1-byte samples, got %d", outFormat.SampleWidth)
	}
	// 800 margin + 1000 loud + 800 margin
	if len(pcm) != 2600 {
		t.Errorf("expected 2600 samples, got %d", len(pcm))
	}
}

func TestTrimSilence32Bit(t *testing.T) {
	format := Format{AudioFormat: formatPCM, Channels: 1, SampleRate: 8000, SampleWidth: 4}
	wav := buildWAV(format, silenceThenTone(2000, 1000, 2000, 1<<30))

	trimmed, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("TrimSilence failed: %v", err)
	}

	_, pcm, err := Decode(trimmed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := len(pcm) / 4; got != 2600 {
		t.Errorf("expected 2600 samples, got %d", got)
	}
}

func TestTrimSilenceNegativePeak(t *testing.T) {
	// Peak amplitude on the negative side: divisor must use |min|.
	samples := silenceThenTone(2000, 1000, 2000, 0)
	for i := 2000; i < 3000; i++ {
		samples[i] = -20000
	}
	wav := mono16(8000, samples)

	trimmed, err := TrimSilence(wav)
	if err != nil {
		t.Fatalf("TrimSilence failed: %v", err)
	}

	_, pcm, err := Decode(trimmed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := len(pcm) / 2; got != 2600 {
		t.Errorf("expected 2600 samples, got %d", got)
	}
}
