package texting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCmdArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Plain words",
			input:    "find matrix 1999",
			expected: []string{"find", "matrix", "1999"},
		},
		{
			name:     "Single quoted name with spaces",
			input:    "resolve 'The Matrix 1999.mkv'",
			expected: []string{"resolve", "The Matrix 1999.mkv"},
		},
		{
			name:     "Double quoted name with spaces",
			input:    `delete "Inception 2010.mkv"`,
			expected: []string{"delete", "Inception 2010.mkv"},
		},
		{
			name:     "Escaped quote inside word",
			input:    `it\'s fine`,
			expected: []string{"it's", "fine"},
		},
		{
			name:     "Collapses repeated spaces",
			input:    "a   b    c",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "Empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "Only spaces",
			input:    "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCmdArgs(tt.input))
		})
	}
}
