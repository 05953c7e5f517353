package plugin

// Secret is a credential value that redacts itself when formatted. Log
// fields and %v dumps of request or RPC structures show "***" instead of
// the password; only Reveal returns the underlying value.
type Secret string

// String implements fmt.Stringer and hides the value.
func (s Secret) String() string {
	if len(s) == 0 {
		return ""
	}
	return "***"
}

// Reveal returns the underlying value for request construction.
func (s Secret) Reveal() string {
	return string(s)
}
