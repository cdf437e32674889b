package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeSplitsAndLowercases(t *testing.T) {
	assert.Equal(t, []string{"matrix", "1999", "720p"}, Tokenize("The.Matrix.1999 [720p]"))
}

func TestTokenizeDropsStopwordsAndDuplicates(t *testing.T) {
	assert.Equal(t, []string{"matrix"}, Tokenize("please send me the Matrix movie, matrix"))
}

func TestTokenizeFoldsUnicode(t *testing.T) {
	assert.Equal(t, []string{"matrix", "1999"}, Tokenize("ＭＡＴＲＩＸ 1999"))
}

func TestTokenizeEmptyQuery(t *testing.T) {
	assert.Empty(t, Tokenize("  ...  "))
	assert.Empty(t, Tokenize("the of and"))
}
