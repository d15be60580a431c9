package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New("loud", "json", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew_RejectsBadFormat(t *testing.T) {
	_, err := New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceID(ctx))
	assert.Equal(t, "", TraceID(context.Background()))
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}

func TestLogRequest_IncludesTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "json", &buf)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "trace-1")
	LogRequest(ctx, logger, http.MethodPost, "/api/solve", http.StatusBadRequest, 3*time.Millisecond)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "trace-1", line["trace_id"])
	assert.Equal(t, "/api/solve", line["path"])
	assert.Equal(t, float64(http.StatusBadRequest), line["status"])
	assert.Equal(t, "info", line["level"])
}
