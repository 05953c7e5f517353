package plugin

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectedResponse(t *testing.T, headers []string, body string) *ResponseCollector {
	t.Helper()
	attempt := NewAttempt()
	require.NoError(t, attempt.Dispatch())
	collector := NewResponseCollector(attempt)
	for _, header := range headers {
		require.NoError(t, collector.AppendHeaderLine(header+"\r\n"))
	}
	if body != "" {
		require.NoError(t, collector.AppendBodyChunk([]byte(body)))
	}
	require.NoError(t, attempt.Complete())
	return collector
}

func TestEvaluate_AllowsWhenNoRuleRejects(t *testing.T) {
	evaluator := NewPolicyEvaluator(hclog.NewNullLogger())
	cfg := &Config{FailedString: "Invalid login"}

	verdict := evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 200 OK", "Content-Type: text/html"},
		"<html>Welcome back</html>"))

	assert.Equal(t, VerdictAllow, verdict.Status)
	assert.Empty(t, verdict.Reason)
}

func TestEvaluate_DeniesOnFailureString(t *testing.T) {
	evaluator := NewPolicyEvaluator(hclog.NewNullLogger())
	cfg := &Config{FailedString: "Invalid login"}

	verdict := evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 200 OK"},
		"<html>Invalid login or password</html>"))

	assert.Equal(t, VerdictDeny, verdict.Status)
	assert.Equal(t, ReasonFailureString, verdict.Reason)
}

func TestEvaluate_FailureStringCheckedBeforeHeaders(t *testing.T) {
	evaluator := NewPolicyEvaluator(hclog.NewNullLogger())
	cfg := &Config{
		FailedString:    "Invalid login",
		RequiredHeaders: []string{"X-Session: granted"},
	}

	// Both rules would reject; the body rule must win.
	verdict := evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 200 OK"},
		"Invalid login"))

	assert.Equal(t, VerdictDeny, verdict.Status)
	assert.Equal(t, ReasonFailureString, verdict.Reason)
}

func TestEvaluate_RequiredHeadersMustAllBePresent(t *testing.T) {
	evaluator := NewPolicyEvaluator(hclog.NewNullLogger())
	cfg := &Config{
		RequiredHeaders: []string{"X-Auth: ok", "X-Session: granted"},
	}

	verdict := evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 200 OK", "X-Session: granted", "X-Auth: ok"},
		""))
	assert.Equal(t, VerdictAllow, verdict.Status)

	verdict = evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 200 OK", "X-Auth: ok"},
		""))
	assert.Equal(t, VerdictDeny, verdict.Status)
	assert.Equal(t, "required header missing: X-Session: granted", verdict.Reason)
}

func TestEvaluate_FirstMissingHeaderReported(t *testing.T) {
	evaluator := NewPolicyEvaluator(hclog.NewNullLogger())
	cfg := &Config{
		RequiredHeaders: []string{"X-First: a", "X-Second: b"},
	}

	verdict := evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 200 OK"}, ""))

	assert.Equal(t, VerdictDeny, verdict.Status)
	assert.Equal(t, "required header missing: X-First: a", verdict.Reason)
}

func TestEvaluate_HeaderMatchIsExactWholeLine(t *testing.T) {
	evaluator := NewPolicyEvaluator(hclog.NewNullLogger())
	cfg := &Config{RequiredHeaders: []string{"X-Auth: ok"}}

	tests := []struct {
		name     string
		received string
		expected VerdictStatus
	}{
		{"exact match", "X-Auth: ok", VerdictAllow},
		{"suffix differs", "X-Auth: ok2", VerdictDeny},
		{"case differs", "x-auth: ok", VerdictDeny},
		{"missing space", "X-Auth:ok", VerdictDeny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := evaluator.Evaluate(cfg, collectedResponse(t,
				[]string{"HTTP/1.1 200 OK", tt.received}, ""))
			assert.Equal(t, tt.expected, verdict.Status)
		})
	}
}

func TestEvaluate_StatusLineCanBeRequired(t *testing.T) {
	evaluator := NewPolicyEvaluator(hclog.NewNullLogger())
	cfg := &Config{RequiredHeaders: []string{"HTTP/1.1 302 Found"}}

	verdict := evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 302 Found", "Location: /account"}, ""))
	assert.Equal(t, VerdictAllow, verdict.Status)

	verdict = evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 200 OK"}, ""))
	assert.Equal(t, VerdictDeny, verdict.Status)
}

func TestEvaluate_EmptyBodyCannotContainFailureString(t *testing.T) {
	evaluator := NewPolicyEvaluator(hclog.NewNullLogger())
	cfg := &Config{FailedString: "denied"}

	verdict := evaluator.Evaluate(cfg, collectedResponse(t,
		[]string{"HTTP/1.1 204 No Content"}, ""))

	assert.Equal(t, VerdictAllow, verdict.Status)
}
