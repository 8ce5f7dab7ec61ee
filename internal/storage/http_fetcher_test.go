package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestHTTPPayloadFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectCalls   int32
		expectError   bool
		errorContains string
	}{
		{
			name:        "success on first attempt",
			responses:   []int{200},
			expectCalls: 1,
		},
		{
			name:        "success on second attempt after 5xx",
			responses:   []int{500, 200},
			expectCalls: 2,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectCalls:   1,
			expectError:   true,
			errorContains: "status code 404",
		},
		{
			name:          "all 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectCalls:   3,
			expectError:   true,
			errorContains: "status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				idx := int(n) - 1
				if idx >= len(tt.responses) {
					idx = len(tt.responses) - 1
				}
				code := tt.responses[idx]
				w.WriteHeader(code)
				if code == 200 {
					w.Write([]byte("image bytes"))
				}
			}))
			defer server.Close()

			f := NewHTTPPayloadFetcher(1024)
			data, _, err := f.FetchPayload(context.Background(), server.URL)

			if tt.expectError {
				if err == nil {
					t.Fatal("FetchPayload() error = nil, want error")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("error = %q, want it to contain %q", err, tt.errorContains)
				}
			} else {
				if err != nil {
					t.Fatalf("FetchPayload() error = %v", err)
				}
				if string(data) != "image bytes" {
					t.Errorf("data = %q", data)
				}
			}
			if got := atomic.LoadInt32(&calls); got != tt.expectCalls {
				t.Errorf("server calls = %d, want %d", got, tt.expectCalls)
			}
		})
	}
}

func TestHTTPPayloadFetcher_ContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png bytes"))
	}))
	defer server.Close()

	f := NewHTTPPayloadFetcher(1024)
	_, contentType, err := f.FetchPayload(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchPayload() error = %v", err)
	}
	if contentType != "image/png" {
		t.Errorf("contentType = %q, want image/png", contentType)
	}
}

func TestHTTPPayloadFetcher_SizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	f := NewHTTPPayloadFetcher(1024)
	_, _, err := f.FetchPayload(context.Background(), server.URL)
	if err == nil {
		t.Fatal("FetchPayload() error = nil, want size limit error")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("error = %q, want size limit message", err)
	}
}

func TestHTTPPayloadFetcher_InvalidURL(t *testing.T) {
	f := NewHTTPPayloadFetcher(1024)

	if _, _, err := f.FetchPayload(context.Background(), "://not-a-url"); err == nil {
		t.Error("FetchPayload(bad url) error = nil, want error")
	}
}
