package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto/pkg/requestcontext"
)

type stubValidator struct {
	subject string
	err     error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &JWTClaims{Subject: v.subject}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{subject: "alice"}, discard())(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`, rr.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{err: errors.New("bad signature")}, discard())(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token sets subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{subject: "alice"}, discard())(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "alice", seen)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	t.Run("propagates inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rr.Header().Get(RequestIDHeader))
	})

	t.Run("mints an id when absent", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NotEmpty(t, seen)
		assert.NotEqual(t, "req-123", seen)
		assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
	})
}

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.2:5000", want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": " 198.51.100.4 "}, remote: "10.0.0.2:5000", want: "198.51.100.4"},
		{name: "remote addr", remote: "192.0.2.1:4242", want: "192.0.2.1"},
		{name: "remote addr without port", remote: "192.0.2.1", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req))
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal_error")
}

func TestLoggerDefaultsStatusToOK(t *testing.T) {
	handler := Logger(discard(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
