// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/danielhkuo/encuestas/models"
)

func TestWithLogging(t *testing.T) {
	var seenID string
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status 418, got %d", w.Code)
	}
	if w.Body.String() != "short and stout" {
		t.Errorf("Expected body to pass through, got '%s'", w.Body.String())
	}

	header := w.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(header); err != nil {
		t.Errorf("Expected a UUID request id header, got %q", header)
	}
	if seenID != header {
		t.Errorf("Handler saw request id %q, header has %q", seenID, header)
	}
}

func TestWithLogging_KeepsIncomingRequestID(t *testing.T) {
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		if got := RequestID(r.Context()); got != "upstream-123" {
			t.Errorf("Expected upstream id in context, got %q", got)
		}
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-123")
	w := httptest.NewRecorder()
	handler(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "upstream-123" {
		t.Errorf("Expected upstream id echoed, got %q", got)
	}
	if RequestID(req.Context()) != "" {
		t.Error("Request without the middleware should have no id")
	}
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "simple map",
			statusCode: http.StatusOK,
			data:       map[string]string{"message": "hello"},
			expected:   `{"message":"hello"}`,
		},
		{
			name:       "live results error",
			statusCode: http.StatusNotFound,
			data:       models.LiveResultsError{Success: false, Error: "Poll not found"},
			expected:   `{"success":false,"error":"Poll not found"}`,
		},
		{
			name:       "error response",
			statusCode: http.StatusBadRequest,
			data:       models.ErrorResponse{Error: "Bad Request", Message: "missing field"},
			expected:   `{"error":"Bad Request","message":"missing field"}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			// Trim newline added by Encode
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusForbidden, "staff access required")

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
	expected := `{"error":"Forbidden","message":"staff access required"}`
	if body := strings.TrimSpace(w.Body.String()); body != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, body)
	}
}

func TestParseJSONBody(t *testing.T) {
	var req models.SetActiveRequest
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"is_active": false}`))
	if err := ParseJSONBody(r, &req); err != nil {
		t.Fatalf("ParseJSONBody() error = %v", err)
	}
	if req.IsActive == nil || *req.IsActive {
		t.Errorf("Expected is_active=false, got %v", req.IsActive)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	if err := ParseJSONBody(r, &req); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		xff        string
		expected   string
	}{
		{"remote addr with port", "192.0.2.1:54321", "", "192.0.2.1"},
		{"ipv6 remote addr", "[2001:db8::1]:443", "", "2001:db8::1"},
		{"remote addr without port", "192.0.2.1", "", "192.0.2.1"},
		{"single forwarded address", "10.0.0.1:80", "203.0.113.7", "203.0.113.7"},
		{"first forwarded address wins", "10.0.0.1:80", "203.0.113.7, 10.0.0.2, 10.0.0.3", "203.0.113.7"},
		{"forwarded address is trimmed", "10.0.0.1:80", "  203.0.113.8  ,10.0.0.2", "203.0.113.8"},
		{"empty first entry falls back", "10.0.0.1:80", " , 10.0.0.2", "10.0.0.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}

			if got := GetClientIP(req); got != tc.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tc.expected)
			}
		})
	}
}
