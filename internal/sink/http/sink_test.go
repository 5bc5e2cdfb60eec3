package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"logroute/internal/router"
)

func TestSinkForwardPostsBodyAndHeaders(t *testing.T) {
	var gotBody []byte
	var gotHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, Headers: map[string]string{"X-Api-Key": "secret"}})
	event := router.Event{"metadata": map[string]any{"level": "error"}}
	if err := s.Forward(context.Background(), event); err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	var got router.Event
	if err := json.Unmarshal(gotBody, &got); err != nil {
		t.Fatalf("server body not valid JSON: %v", err)
	}
	if gotHeader != "secret" {
		t.Fatalf("server got header %q", gotHeader)
	}
}

func TestSinkForwardErrorsOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL})
	if err := s.Forward(context.Background(), router.Event{"a": 1}); err == nil {
		t.Fatalf("Forward() error = nil, want error for 500 response")
	}
}

func TestSinkCloseIsNoop(t *testing.T) {
	s := New(Config{URL: "http://example.invalid"})
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
