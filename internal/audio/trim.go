package audio

import "encoding/binary"

// DefaultTrimThreshold is the normalized amplitude below which a sample
// counts as silence.
const DefaultTrimThreshold = 0.02

// TrimSilence removes leading and trailing silence from WAV audio bytes
// using DefaultTrimThreshold.
func TrimSilence(raw []byte) ([]byte, error) {
	return TrimSilenceThreshold(raw, DefaultTrimThreshold)
}

// TrimSilenceThreshold removes leading and trailing silence from WAV audio
// bytes, keeping a 100 ms margin on each side of the detected sound region.
//
// threshold is a normalized amplitude cutoff. Values outside [0, 1) are
// accepted without a guard: a threshold >= 1 never finds sound and the
// input passes through, a threshold <= 0 marks every non-zero sample loud.
//
// Passthrough cases (raw returned unchanged, no error): sample width not in
// {1, 2, 4} bytes, non-integer-PCM encodings such as IEEE float, and input
// where no sample exceeds the threshold. A structurally malformed container
// returns a *FormatError.
//
// The function is pure: it allocates only locals and is safe for concurrent
// use from independent requests.
func TrimSilenceThreshold(raw []byte, threshold float64) ([]byte, error) {
	format, pcm, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	if format.AudioFormat != formatPCM {
		return raw, nil
	}
	width := format.SampleWidth
	if width != 1 && width != 2 && width != 4 {
		return raw, nil
	}

	samples := decodeSamples(pcm, width)
	if len(samples) == 0 {
		return raw, nil
	}

	// Normalize by peak amplitude. The divisor floor of 1 guards digital
	// silence against a division by zero.
	var minSample, maxSample int64
	for _, s := range samples {
		if s > maxSample {
			maxSample = s
		}
		if s < minSample {
			minSample = s
		}
	}
	divisor := maxSample
	if -minSample > divisor {
		divisor = -minSample
	}
	if divisor < 1 {
		divisor = 1
	}

	loud := func(s int64) bool {
		if s < 0 {
			s = -s
		}
		return float64(s)/float64(divisor) > threshold
	}

	first, last := -1, -1
	for i, s := range samples {
		if loud(s) {
			first = i
			break
		}
	}
	if first < 0 {
		// All silent: no trim window can be determined.
		return raw, nil
	}
	for i := len(samples) - 1; i >= 0; i-- {
		if loud(samples[i]) {
			last = i + 1
			break
		}
	}

	margin := format.SampleRate / 10 // 100 ms margin
	first -= margin
	if first < 0 {
		first = 0
	}
	last += margin
	if last > len(samples) {
		last = len(samples)
	}

	return Encode(format, encodeSamples(samples[first:last], width)), nil
}

// decodeSamples converts little-endian signed integer PCM bytes into a flat
// sample slice. Interleaved channels stay interleaved; a trailing partial
// sample is ignored.
func decodeSamples(pcm []byte, width int) []int64 {
	n := len(pcm) / width
	samples := make([]int64, n)
	for i := 0; i < n; i++ {
		off := i * width
		switch width {
		case 1:
			samples[i] = int64(int8(pcm[off]))
		case 2:
			samples[i] = int64(int16(binary.LittleEndian.Uint16(pcm[off : off+2])))
		case 4:
			samples[i] = int64(int32(binary.LittleEndian.Uint32(pcm[off : off+4])))
		}
	}
	return samples
}

// encodeSamples is the inverse of decodeSamples.
func encodeSamples(samples []int64, width int) []byte {
	pcm := make([]byte, len(samples)*width)
	for i, s := range samples {
		off := i * width
		switch width {
		case 1:
			pcm[off] = byte(int8(s))
		case 2:
			binary.LittleEndian.PutUint16(pcm[off:off+2], uint16(int16(s)))
		case 4:
			binary.LittleEndian.PutUint32(pcm[off:off+4], uint32(int32(s)))
		}
	}
	return pcm
}
