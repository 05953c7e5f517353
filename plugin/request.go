package plugin

import "strings"

const formContentType = "application/x-www-form-urlencoded"

// VerificationRequest describes one outgoing verification call. The body
// is fully assembled before dispatch; nothing credential-derived is built
// after the request leaves.
type VerificationRequest struct {
	URL         string
	UserAgent   string
	ContentType string
	// Body is the encoded form, <username_param>=<user>&<password_param>=<pass>.
	Body string
	// RedactedBody is Body with the password value masked, safe for debug
	// logging.
	RedactedBody string
}

// BuildVerificationRequest assembles the POST descriptor for one credential
// pair using the configured endpoint and field names. Both values are
// percent-encoded with FormEncode.
func BuildVerificationRequest(cfg *Config, username string, password Secret) *VerificationRequest {
	var body strings.Builder
	body.WriteString(cfg.UsernameParam)
	body.WriteByte('=')
	body.WriteString(FormEncode(username))
	body.WriteByte('&')
	body.WriteString(cfg.PasswordParam)
	body.WriteByte('=')
	prefix := body.String()

	return &VerificationRequest{
		URL:          cfg.URL,
		UserAgent:    UserAgent,
		ContentType:  formContentType,
		Body:         prefix + FormEncode(password.Reveal()),
		RedactedBody: prefix + password.String(),
	}
}
