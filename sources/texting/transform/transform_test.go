package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunksKeepsShortTextWhole(t *testing.T) {
	assert.Equal(t, []string{"one\ntwo"}, Chunks("one\ntwo", 100))
}

func TestChunksPrefersLineBoundaries(t *testing.T) {
	chunks := Chunks("first line\nsecond line\nthird line", 24)

	assert.Equal(t, []string{"first line\nsecond line", "third line"}, chunks)
}

func TestChunksSplitsUnbrokenText(t *testing.T) {
	chunks := Chunks("abcdefghij", 4)

	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)
}

func TestSmartTruncateLeavesShortNamesAlone(t *testing.T) {
	assert.Equal(t, "short.mkv", SmartTruncate("short.mkv", 64))
}

func TestSmartTruncateCutsAtSpace(t *testing.T) {
	assert.Equal(t, "the matrix…", SmartTruncate("the matrix reloaded 2003 remastered", 14))
}

func TestSmartTruncateCountsRunes(t *testing.T) {
	truncated := SmartTruncate("ＴＨＥ ＭＡＴＲＩＸ 1999 remastered edition", 16)

	assert.Equal(t, "ＴＨＥ ＭＡＴＲＩＸ…", truncated)
}
