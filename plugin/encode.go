package plugin

import "strings"

const lowerhex = "0123456789abcdef"

// FormEncode percent-encodes a single form value for an
// application/x-www-form-urlencoded request body. ASCII letters, digits and
// "-", "_", "." pass through, a space becomes "+", and every other byte is
// emitted as %xx with lowercase hex. Bytes outside ASCII are encoded
// byte-by-byte, so multi-byte UTF-8 runes expand to one escape per byte.
//
// net/url's QueryEscape is close but not usable here: it emits uppercase hex
// and leaves "~" bare, and verification endpoints that compare raw bodies
// have been seen to care.
func FormEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isFormSafe(c):
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(lowerhex[c>>4])
			b.WriteByte(lowerhex[c&0x0f])
		}
	}
	return b.String()
}

func isFormSafe(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.'
}
