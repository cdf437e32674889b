package texting

import (
	"strings"
)

// ParseCmdArgs splits a command tail into arguments. Single and double
// quotes group words, backslash escapes the next character. Quoted file
// names with spaces are the common case here.
func ParseCmdArgs(args string) []string {
	var result []string
	var current strings.Builder
	var quote byte
	escaped := false

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			result = append(result, current.String())
		}
		current.Reset()
	}

	for i := 0; i < len(args); i++ {
		ch := args[i]

		if escaped {
			if ch != '\'' && ch != '"' && ch != '\\' {
				current.WriteByte('\\')
			}
			current.WriteByte(ch)
			escaped = false
			continue
		}

		switch {
		case ch == '\\':
			escaped = true
		case quote != 0 && ch == quote:
			quote = 0
		case quote == 0 && (ch == '\'' || ch == '"'):
			quote = ch
		case quote == 0 && ch == ' ':
			flush()
		default:
			current.WriteByte(ch)
		}
	}

	flush()
	return result
}
