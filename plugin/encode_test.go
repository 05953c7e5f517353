package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormEncode_SafeCharactersPassThrough(t *testing.T) {
	in := "abcXYZ019-_."
	assert.Equal(t, in, FormEncode(in))
}

func TestFormEncode_SpaceBecomesPlus(t *testing.T) {
	assert.Equal(t, "a+b", FormEncode("a b"))
	assert.Equal(t, "++", FormEncode("  "))
}

func TestFormEncode_EscapesWithLowercaseHex(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"ampersand", "a b&c", "a+b%26c"},
		{"punctuation", "p@ss/w!", "p%40ss%2fw%21"},
		{"equals and percent", "=%", "%3d%25"},
		{"plus is escaped not literal", "1+1", "1%2b1"},
		{"tilde", "~", "%7e"},
		{"multi-byte rune escapes per byte", "café", "caf%c3%a9"},
		{"control byte", "a\nb", "a%0ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormEncode(tt.in))
		})
	}
}

func TestFormEncode_OutputLength(t *testing.T) {
	// One byte in, one byte out for safe bytes and space; three bytes out
	// for everything else.
	tests := []struct {
		in      string
		escaped int
	}{
		{"plain", 0},
		{"a b", 0},
		{"a&b", 1},
		{"&&&", 3},
	}
	for _, tt := range tests {
		out := FormEncode(tt.in)
		assert.Len(t, out, len(tt.in)+2*tt.escaped, "input %q", tt.in)
	}
}
