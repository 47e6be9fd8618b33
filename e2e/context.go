package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries one scenario's HTTP state against a running server.
type TestContext struct {
	baseURL    string
	signingKey []byte
	issuer     string
	client     *http.Client

	lastStatus int
	lastBody   []byte
}

// NewTestContext reads LOTTO_E2E_BASE_URL and the server's JWT settings.
func NewTestContext() *TestContext {
	return &TestContext{
		baseURL:    strings.TrimRight(getEnv("LOTTO_E2E_BASE_URL", "http://localhost:8080"), "/"),
		signingKey: []byte(getEnv("LOTTO_JWT_SIGNING_KEY", "dev-secret-key-change-in-production")),
		issuer:     getEnv("LOTTO_JWT_ISSUER", "lotto"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears the previous response between scenarios.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
}

func (tc *TestContext) token(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    tc.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.signingKey)
}

// POST sends body as JSON, authenticated as subject unless subject is empty.
func (tc *TestContext) POST(path, subject string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	return tc.do(http.MethodPost, path, subject, reader)
}

// GET fetches path, authenticated as subject unless subject is empty.
func (tc *TestContext) GET(path, subject string) error {
	return tc.do(http.MethodGet, path, subject, nil)
}

func (tc *TestContext) do(method, path, subject string, body io.Reader) error {
	req, err := http.NewRequest(method, tc.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		token, err := tc.token(subject)
		if err != nil {
			return fmt.Errorf("sign token for %s: %w", subject, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastStatusCode() int {
	return tc.lastStatus
}

// GetResponseField reads a top-level field of the last JSON response. Nested
// fields use dots, e.g. "last_draw.winner".
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.lastBody)
	}
	var current interface{} = body
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not found in response: %s", field, tc.lastBody)
		}
	}
	return current, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
