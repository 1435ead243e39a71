package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PCM format codes from the WAV fmt chunk.
const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// FormatError indicates that audio bytes could not be parsed as a WAV
// container. It is the only failure mode of the codec; callers treating
// trimming as best-effort cleanup are expected to catch it and keep the
// original bytes.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string {
	return e.msg
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

// Format describes the sample layout of a WAV file. Output files produced by
// the trimmer carry the exact same Format as their input.
type Format struct {
	AudioFormat int // fmt chunk format code (1 = integer PCM)
	Channels    int
	SampleRate  int // frames per second
	SampleWidth int // bytes per sample
}

// IsWAV reports whether raw starts with a RIFF/WAVE container signature
// ("RIFF" at offset 0, "WAVE" at offset 8). Only inputs passing this check
// are routed to the trimmer.
func IsWAV(raw []byte) bool {
	return len(raw) >= 12 &&
		string(raw[0:4]) == "RIFF" &&
		string(raw[8:12]) == "WAVE"
}

// Decode parses a WAV container and returns its format along with the raw
// interleaved sample bytes from the data chunk. The reader walks the RIFF
// chunk list, so containers with extra chunks (LIST, fact, ...) parse fine.
func Decode(raw []byte) (Format, []byte, error) {
	if !IsWAV(raw) {
		return Format{}, nil, formatErrorf("not a RIFF/WAVE container")
	}

	var (
		format   Format
		haveFmt  bool
		haveData bool
		data     []byte
	)

	// Chunk list starts right after the 12-byte RIFF header.
	offset := 12
	for offset+8 <= len(raw) {
		chunkID := string(raw[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[offset+4 : offset+8]))
		body := raw[offset+8:]
		if chunkSize < 0 || chunkSize > len(body) {
			return Format{}, nil, formatErrorf("chunk %q size %d exceeds remaining %d bytes", chunkID, chunkSize, len(body))
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Format{}, nil, formatErrorf("fmt chunk too short: %d bytes", chunkSize)
			}
			format.AudioFormat = int(binary.LittleEndian.Uint16(body[0:2]))
			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample := int(binary.LittleEndian.Uint16(body[14:16]))
			format.SampleWidth = bitsPerSample / 8
			haveFmt = true
		case "data":
			data = body[:chunkSize]
			haveData = true
		}

		// Chunks are word-aligned: odd sizes carry one pad byte.
		offset += 8 + chunkSize + chunkSize%2
	}

	if !haveFmt {
		return Format{}, nil, formatErrorf("invalid WAV file: missing fmt chunk")
	}
	if !haveData {
		return Format{}, nil, formatErrorf("invalid WAV file: missing data chunk")
	}
	if format.SampleRate <= 0 {
		return Format{}, nil, formatErrorf("invalid sample rate: %d", format.SampleRate)
	}
	if format.Channels <= 0 {
		return Format{}, nil, formatErrorf("invalid channel count: %d", format.Channels)
	}
	if format.SampleWidth <= 0 {
		return Format{}, nil, formatErrorf("invalid sample width: %d bytes", format.SampleWidth)
	}

	return format, data, nil
}

// Encode builds a canonical 44-byte-header WAV file from a format and raw
// interleaved sample bytes. The header fields are derived solely from format
// and len(pcm), so re-encoding a decoded file preserves every format field.
func Encode(format Format, pcm []byte) []byte {
	bitsPerSample := format.SampleWidth * 8
	byteRate := format.SampleRate * format.Channels * format.SampleWidth
	blockAlign := format.Channels * format.SampleWidth

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(format.AudioFormat))
	binary.Write(buf, binary.LittleEndian, uint16(format.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(format.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// Duration returns the playing time of a WAV file in seconds.
func Duration(raw []byte) (float64, error) {
	format, pcm, err := Decode(raw)
	if err != nil {
		return 0, err
	}

	numFrames := len(pcm) / (format.SampleWidth * format.Channels)

	return float64(numFrames) / float64(format.SampleRate), nil
}

// Info returns basic metadata about a WAV file.
type Info struct {
	SampleRate    int     `json:"sample_rate"`
	Channels      int     `json:"channels"`
	BitsPerSample int     `json:"bits_per_sample"`
	Duration      float64 `json:"duration_seconds"`
	DataSize      int     `json:"data_size_bytes"`
	NumFrames     int     `json:"num_frames"`
}

// GetInfo extracts metadata from a WAV file.
func GetInfo(raw []byte) (*Info, error) {
	format, pcm, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	numFrames := len(pcm) / (format.SampleWidth * format.Channels)

	return &Info{
		SampleRate:    format.SampleRate,
		Channels:      format.Channels,
		BitsPerSample: format.SampleWidth * 8,
		Duration:      float64(numFrames) / float64(format.SampleRate),
		DataSize:      len(pcm),
		NumFrames:     numFrames,
	}, nil
}
