package plugin

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const bodyReadChunk = 4 * 1024

// HTTPInvoker performs the single verification POST for an attempt and
// streams the response into its collector. It never retries: a transport
// error is final for the attempt.
type HTTPInvoker struct {
	client *http.Client
	logger hclog.Logger
}

// NewHTTPInvoker builds an invoker for the configured endpoint. The client
// enforces the configured timeout over the whole call and does not follow
// redirects, since acceptance rules routinely match on the 3xx response
// itself (status line or Location header).
func NewHTTPInvoker(cfg *Config, logger hclog.Logger) *HTTPInvoker {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}

	return &HTTPInvoker{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
				},
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// Do issues the verification request and feeds the response through the
// collector: the status line first, then every header line, then the body
// in chunks. Any HTTP status is a completed attempt; a non-nil error is
// returned only when the exchange itself fails.
func (t *HTTPInvoker) Do(ctx context.Context, req *VerificationRequest, collector *ResponseCollector) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, strings.NewReader(req.Body))
	if err != nil {
		return fmt.Errorf("building verification request: %w", err)
	}
	httpReq.Header.Set("User-Agent", req.UserAgent)
	httpReq.Header.Set("Content-Type", req.ContentType)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling verification endpoint: %w", err)
	}
	defer resp.Body.Close()

	if err := t.deliverHeaders(resp, collector); err != nil {
		return err
	}
	return t.deliverBody(resp.Body, collector)
}

// deliverHeaders replays the response head as individual lines. The status
// line goes first, so required-header rules may name it ("HTTP/1.1 302
// Found"). Header keys are visited in sorted order because the wire order
// across distinct keys is not observable here; values within one key keep
// their arrival order, duplicates included. Lines carry their CRLF so the
// collector's trimming is exercised the same way for every source.
func (t *HTTPInvoker) deliverHeaders(resp *http.Response, collector *ResponseCollector) error {
	statusLine := resp.Proto + " " + resp.Status
	if err := collector.AppendHeaderLine(statusLine + "\r\n"); err != nil {
		return err
	}

	keys := make([]string, 0, len(resp.Header))
	for key := range resp.Header {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, value := range resp.Header[key] {
			line := key + ": " + value
			t.logger.Debug("received response header", "line", line)
			if err := collector.AppendHeaderLine(line + "\r\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *HTTPInvoker) deliverBody(body io.Reader, collector *ResponseCollector) error {
	buf := make([]byte, bodyReadChunk)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if appendErr := collector.AppendBodyChunk(buf[:n]); appendErr != nil {
				return appendErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading verification response: %w", err)
		}
	}
}
