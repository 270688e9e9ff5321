package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// NewTestRequest builds an httptest request with the given body.
func NewTestRequest(method, target string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, target, body)
}

// NewTestRequestWithJSON marshals payload and builds a JSON request.
func NewTestRequestWithJSON(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ParseJSONResponse unmarshals a JSON object response body.
func ParseJSONResponse(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("failed to parse json response: %v", err)
	}
	return parsed
}

func AssertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d", want, rr.Code)
	}
}

func AssertJSONContains(t *testing.T, body []byte, key string, want any) {
	t.Helper()
	parsed := ParseJSONResponse(t, body)
	if parsed[key] != want {
		t.Fatalf("expected %q to be %v, got %v", key, want, parsed[key])
	}
}

func RandomUUID() uuid.UUID {
	return uuid.New()
}

func RandomEmail() string {
	return fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8])
}

func RandomUsername() string {
	return fmt.Sprintf("user_%s", uuid.New().String()[:8])
}
