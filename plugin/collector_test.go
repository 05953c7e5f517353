package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInFlightCollector(t *testing.T) *ResponseCollector {
	t.Helper()
	attempt := NewAttempt()
	require.NoError(t, attempt.Dispatch())
	return NewResponseCollector(attempt)
}

func TestResponseCollector_TrimsHeaderLineEndings(t *testing.T) {
	tests := []struct {
		name     string
		chunk    string
		expected string
	}{
		{"crlf", "X-Test: ok\r\n", "X-Test: ok"},
		{"lf only", "X-Test: ok\n", "X-Test: ok"},
		{"cr only", "X-Test: ok\r", "X-Test: ok"},
		{"no terminator", "X-Test: ok", "X-Test: ok"},
		{"bare crlf trims to empty line", "\r\n", ""},
		{"bare lf trims to empty line", "\n", ""},
		{"at most two characters trimmed", "a\r\n\r\n", "a\r\n"},
		{"interior terminators kept", "a\r\nb", "a\r\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := newInFlightCollector(t)
			require.NoError(t, collector.AppendHeaderLine(tt.chunk))
			require.Len(t, collector.Headers(), 1)
			assert.Equal(t, tt.expected, collector.Headers()[0])
		})
	}
}

func TestResponseCollector_HeadersKeepArrivalOrder(t *testing.T) {
	collector := newInFlightCollector(t)

	lines := []string{"HTTP/1.1 200 OK\r\n", "Set-Cookie: a=1\r\n", "Set-Cookie: b=2\r\n"}
	for _, line := range lines {
		require.NoError(t, collector.AppendHeaderLine(line))
	}

	assert.Equal(t,
		[]string{"HTTP/1.1 200 OK", "Set-Cookie: a=1", "Set-Cookie: b=2"},
		collector.Headers())
}

func TestResponseCollector_EmptyChunksAreNoOps(t *testing.T) {
	collector := newInFlightCollector(t)

	require.NoError(t, collector.AppendHeaderLine(""))
	require.NoError(t, collector.AppendBodyChunk(nil))
	require.NoError(t, collector.AppendBodyChunk([]byte{}))

	assert.Empty(t, collector.Headers())
	assert.Empty(t, collector.Body())
}

func TestResponseCollector_BodyChunksConcatenate(t *testing.T) {
	collector := newInFlightCollector(t)

	require.NoError(t, collector.AppendBodyChunk([]byte("<html>lo")))
	require.NoError(t, collector.AppendBodyChunk([]byte("gin failed")))
	require.NoError(t, collector.AppendBodyChunk([]byte("</html>")))

	assert.Equal(t, "<html>login failed</html>", string(collector.Body()))
}

func TestResponseCollector_CopiesBodyChunks(t *testing.T) {
	collector := newInFlightCollector(t)

	buf := []byte("first")
	require.NoError(t, collector.AppendBodyChunk(buf))
	copy(buf, "XXXXX")
	require.NoError(t, collector.AppendBodyChunk(buf))

	assert.Equal(t, "firstXXXXX", string(collector.Body()))
}

func TestResponseCollector_RejectsWritesOutsideInFlight(t *testing.T) {
	attempt := NewAttempt()
	collector := NewResponseCollector(attempt)

	// Still pending.
	assert.ErrorIs(t, collector.AppendHeaderLine("X-Early: no\r\n"), ErrAttemptNotInFlight)
	assert.ErrorIs(t, collector.AppendBodyChunk([]byte("early")), ErrAttemptNotInFlight)

	require.NoError(t, attempt.Dispatch())
	require.NoError(t, collector.AppendHeaderLine("X-Test: ok\r\n"))
	require.NoError(t, collector.AppendBodyChunk([]byte("body")))
	require.NoError(t, attempt.Complete())

	// Frozen after completion.
	assert.ErrorIs(t, collector.AppendHeaderLine("X-Late: no\r\n"), ErrAttemptNotInFlight)
	assert.ErrorIs(t, collector.AppendBodyChunk([]byte("late")), ErrAttemptNotInFlight)
	assert.Equal(t, []string{"X-Test: ok"}, collector.Headers())
	assert.Equal(t, "body", string(collector.Body()))
}

func TestAttempt_Lifecycle(t *testing.T) {
	attempt := NewAttempt()
	assert.NotEmpty(t, attempt.ID)
	assert.Equal(t, AttemptPending, attempt.State())

	// Completing before dispatch is not a legal transition.
	assert.Error(t, attempt.Complete())

	require.NoError(t, attempt.Dispatch())
	assert.Equal(t, AttemptInFlight, attempt.State())

	require.NoError(t, attempt.Complete())
	assert.Equal(t, AttemptCompleted, attempt.State())

	// Terminal states accept no further transitions.
	assert.Error(t, attempt.Dispatch())
	assert.Error(t, attempt.Fail())
}

func TestAttempt_FailIsTerminal(t *testing.T) {
	attempt := NewAttempt()
	require.NoError(t, attempt.Dispatch())
	require.NoError(t, attempt.Fail())
	assert.Equal(t, AttemptFailed, attempt.State())
	assert.Error(t, attempt.Complete())
}

func TestAttempt_IDsAreUnique(t *testing.T) {
	a := NewAttempt()
	b := NewAttempt()
	assert.NotEqual(t, a.ID, b.ID)
}
