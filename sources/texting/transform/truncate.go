package transform

import "unicode"

// SmartTruncate shortens text to at most maxLen runes, cutting at the
// last space when one exists and marking the cut with an ellipsis.
// Filenames are frequently unicode, so it never splits a rune.
func SmartTruncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := runes[:maxLen-1]
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}

	return string(cut) + "…"
}
