// Package phonetic renders Chinese transcripts as tone-marked pinyin for the
// transcription API response.
package phonetic
