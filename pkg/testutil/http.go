// Package testutil holds request builders and response assertions for tests
// that drive the lottery API through its router.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lotto/pkg/domain-errors"
)

// NewJSONRequest builds a request whose body is v marshaled as JSON. A nil v
// sends no body.
func NewJSONRequest(t *testing.T, method, path string, v any) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if v != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(v), "encode request body")
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest serves req on h and returns the recorded response.
func DoRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// UnmarshalResponse decodes the response body into a new T.
func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "decode response body: %s", rr.Body.String())
	return &out
}

// AssertStatus checks the response status, printing the body on mismatch.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status, body: %s", rr.Body.String())
}

// AssertDomainError checks that the response carries code in its error field
// with the status the transport maps that code to.
func AssertDomainError(t *testing.T, rr *httptest.ResponseRecorder, code dErrors.Code) {
	t.Helper()
	AssertStatus(t, rr, dErrors.ToHTTPStatus(code))
	body := UnmarshalResponse[map[string]string](t, rr)
	assert.Equal(t, string(code), (*body)["error"], "unexpected error code")
}

// AssertPhase checks the "phase" field that admin lifecycle endpoints return.
func AssertPhase(t *testing.T, rr *httptest.ResponseRecorder, expected string) {
	t.Helper()
	AssertStatus(t, rr, http.StatusOK)
	body := UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, expected, (*body)["phase"], "unexpected phase")
}
