package transform

import "strings"

// Chunks splits text into pieces of at most cs runes. Replies here are
// line-oriented lists, so a chunk boundary prefers the last newline
// inside the window over a mid-line cut.
func Chunks(text string, cs int) []string {
	if cs <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	var chunks []string

	for len(runes) > 0 {
		if len(runes) <= cs {
			chunks = append(chunks, string(runes))
			break
		}

		window := string(runes[:cs])
		cut := cs
		if nl := strings.LastIndexByte(window, '\n'); nl > 0 {
			cut = len([]rune(window[:nl])) + 1
		}

		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}

	return chunks
}
