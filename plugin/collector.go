package plugin

// ResponseCollector accumulates the upstream response for a single
// verification attempt: every received header line and the raw body bytes.
// The transport invoker is its only writer, and writes are accepted only
// while the attempt is in flight; once the attempt completes or fails the
// collected response is frozen.
type ResponseCollector struct {
	attempt *Attempt
	headers []string
	body    []byte
}

// NewResponseCollector returns an empty collector bound to attempt.
func NewResponseCollector(attempt *Attempt) *ResponseCollector {
	return &ResponseCollector{attempt: attempt}
}

// AppendHeaderLine records one received header line in arrival order. The
// chunk's trailing line terminator (at most two CR/LF characters) is
// stripped; the status line and a blank separator line are recorded like
// any other line. An empty chunk is a no-op.
func (c *ResponseCollector) AppendHeaderLine(chunk string) error {
	if err := c.attempt.ensureInFlight(); err != nil {
		return err
	}
	if chunk == "" {
		return nil
	}
	c.headers = append(c.headers, trimLineEnding(chunk))
	return nil
}

// AppendBodyChunk appends a chunk of body bytes exactly as received. An
// empty chunk is a no-op. The chunk is copied, so callers may reuse their
// buffer.
func (c *ResponseCollector) AppendBodyChunk(chunk []byte) error {
	if err := c.attempt.ensureInFlight(); err != nil {
		return err
	}
	if len(chunk) == 0 {
		return nil
	}
	c.body = append(c.body, chunk...)
	return nil
}

// Headers returns the recorded header lines in arrival order.
func (c *ResponseCollector) Headers() []string {
	return c.headers
}

// Body returns the accumulated body bytes.
func (c *ResponseCollector) Body() []byte {
	return c.body
}

// trimLineEnding removes the chunk's trailing line terminator: at most two
// characters, each of which must be CR or LF. Trimming never runs past the
// start of the chunk, so a bare "\n" or "\r\n" trims to the empty string
// and nothing worse.
func trimLineEnding(s string) string {
	for i := 0; i < 2 && len(s) > 0; i++ {
		last := s[len(s)-1]
		if last != '\r' && last != '\n' {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
