package phonetic

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// Converter renders transcripts as tone-marked pinyin. It is read-only after
// construction and safe for concurrent use.
type Converter struct {
	args pinyin.Args
}

// NewConverter returns a Converter using the diacritic tone style
// (e.g. "zhōng guó").
func NewConverter() *Converter {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	return &Converter{args: args}
}

// Render converts text into a space-separated pinyin string. Each Han
// character becomes one tone-marked syllable; consecutive non-Han runes are
// kept verbatim as a single token, so mixed input like "GPT你好" renders as
// "GPT nǐ hǎo". Empty or whitespace-only input yields "".
func (c *Converter) Render(text string) string {
	var tokens []string
	var run strings.Builder

	flushRun := func() {
		if token := strings.TrimSpace(run.String()); token != "" {
			tokens = append(tokens, token)
		}
		run.Reset()
	}

	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			run.WriteRune(r)
			continue
		}

		flushRun()
		readings := pinyin.SinglePinyin(r, c.args)
		if len(readings) == 0 {
			// Han rune without a known reading, keep the character.
			tokens = append(tokens, string(r))
			continue
		}
		tokens = append(tokens, readings[0])
	}
	flushRun()

	return strings.Join(tokens, " ")
}
