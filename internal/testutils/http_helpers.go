package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ErrorBody mirrors the JSON error envelope returned by the API.
type ErrorBody struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// DoRequest sends a request with an optional JSON body straight to handler.
// body may be nil, a string or []byte sent verbatim, or any value to marshal.
func DoRequest(t testing.TB, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewBuffer(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "failed to marshal request body")
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON unmarshals the recorded response body into v.
func DecodeJSON(t testing.TB, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "failed to decode body: %s", rec.Body.String())
}

// AssertErrorResponse checks the status code and that the error message
// contains expectedMsgPart.
func AssertErrorResponse(t testing.TB, rec *httptest.ResponseRecorder, expectedStatus int, expectedMsgPart string) {
	t.Helper()

	assert.Equal(t, expectedStatus, rec.Code, "unexpected status, body: %s", rec.Body.String())

	var errResp ErrorBody
	DecodeJSON(t, rec, &errResp)
	assert.Contains(t, errResp.Error, expectedMsgPart)
}
