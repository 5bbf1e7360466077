package format

import (
	"iter"
	"slices"
	"unicode"
	"unicode/utf8"
)

// Message size limits of the chat transports, in runes.
const (
	DiscordLimit  = 2000
	TelegramLimit = 4096
)

// Split yields chunks of at most limit runes whose concatenation is text.
// Cuts are made after whitespace, preferring a newline in the back half of
// the window; a token is broken only when it is longer than limit. The
// returned sequence can be ranged over more than once.
func Split(text string, limit int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" {
			return
		}
		if limit <= 0 {
			yield(text)
			return
		}

		// byte offset of every rune start, plus the end of text
		offsets := make([]int, 0, len(text)+1)
		for i := range text {
			offsets = append(offsets, i)
		}
		offsets = append(offsets, len(text))
		runeCount := len(offsets) - 1

		for start := 0; start < runeCount; {
			end := start + limit
			if end >= runeCount {
				yield(text[offsets[start]:])
				return
			}

			cut := cutPoint(text, offsets, start, end)
			if !yield(text[offsets[start]:offsets[cut]]) {
				return
			}
			start = cut
		}
	}
}

// Chunks collects Split into a slice.
func Chunks(text string, limit int) []string {
	return slices.Collect(Split(text, limit))
}

// cutPoint returns the rune index in (start, end] where the chunk should end.
func cutPoint(text string, offsets []int, start, end int) int {
	runeAt := func(k int) rune {
		r, _ := utf8.DecodeRuneInString(text[offsets[k]:])
		return r
	}

	half := start + (end-start)/2
	for k := end - 1; k >= half; k-- {
		if runeAt(k) == '\n' {
			return k + 1
		}
	}
	for k := end - 1; k >= start; k-- {
		if unicode.IsSpace(runeAt(k)) {
			return k + 1
		}
	}
	// a single token longer than the window
	return end
}
