package license

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n\r\n ", ""},
		{"trailing newline", "MIT\n", "MIT"},
		{"padded", "  GPL-3.0  ", "GPL-3.0"},
		{"multi line", "GPL-2+\n and\n\tLGPL-2.1+", "GPL-2+ and LGPL-2.1+"},
		{"runs", "BSD   3\t\tclause", "BSD 3 clause"},
		{"crlf", "Apache-2.0\r\nor MIT\r\n", "Apache-2.0 or MIT"},
		{"vertical tab and form feed", "a\v\fb", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeProperties(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", " ", "\n", "MIT", " MIT ", "a\nb\n\nc", "\t\tx\r\ny  ",
		"GPL-2+ | LGPL", "über  lizenz\n", " nbsp ", strings.Repeat("ab \n", 50),
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "idempotent for %q", in)
		assert.NotContains(t, once, "\n")
		assert.Equal(t, strings.TrimSpace(once), once)
		assert.NotContains(t, once, "  ")
	}
}
