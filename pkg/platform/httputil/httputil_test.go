package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "lotto/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("redis: connection refused"), dErrors.CodeInternal, "store failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("lifecycle codes map to conflict and bad gateway", func(t *testing.T) {
		cases := map[dErrors.Code]int{
			dErrors.CodeWrongPhase:     http.StatusConflict,
			dErrors.CodeNoTicket:       http.StatusNotFound,
			dErrors.CodeTransferFailed: http.StatusBadGateway,
			dErrors.CodeNoStateFound:   http.StatusPreconditionFailed,
		}
		for code, status := range cases {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.Wrap(dErrors.New(code, "cause"), code, "outer"))
			if w.Code != status {
				t.Fatalf("%s: expected status %d, got %d", code, status, w.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body["error"] != string(code) {
				t.Fatalf("expected error code %s, got %q", code, body["error"])
			}
			if body["error_description"] != "outer" {
				t.Fatalf("expected outer description, got %q", body["error_description"])
			}
		}
	})
}
