package license

import "strings"

// Normalize collapses raw license text into a single line: every run of
// whitespace (newlines included) becomes one ASCII space and the result is
// trimmed. An empty result means "no answer".
func Normalize(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
