package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"logroute/internal/router"
)

func startTestReceiver(t *testing.T, cfg Config) (*Receiver, chan Message) {
	t.Helper()
	r := New(cfg)
	out := make(chan Message, 16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := r.Run(ctx, out); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(2 * time.Second)
	for r.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("receiver did not start listening in time")
		}
		time.Sleep(time.Millisecond)
	}
	return r, out
}

func TestReceiverSingleJSONObjectFireAndForget(t *testing.T) {
	r, out := startTestReceiver(t, Config{Addr: "127.0.0.1:0", DefaultSourceID: "web"})

	body := `{"metadata":{"level":"error"}}`
	resp, err := http.Post("http://"+r.Addr().String()+"/ingest", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	select {
	case msg := <-out:
		if msg.SourceID != "web" {
			t.Errorf("SourceID = %q, want web", msg.SourceID)
		}
	case <-time.After(time.Second):
		t.Fatal("no message queued")
	}
}

func TestReceiverArrayOfEvents(t *testing.T) {
	r, out := startTestReceiver(t, Config{Addr: "127.0.0.1:0", DefaultSourceID: "web"})

	body := `[{"a":1},{"a":2},{"a":3}]`
	resp, err := http.Post("http://"+r.Addr().String()+"/ingest", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Events-Received"); got != "3" {
		t.Fatalf("X-Events-Received = %q, want 3", got)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-out:
		case <-time.After(time.Second):
			t.Fatalf("expected 3 queued messages, got %d", i)
		}
	}
}

func TestReceiverNDJSON(t *testing.T) {
	r, out := startTestReceiver(t, Config{Addr: "127.0.0.1:0", DefaultSourceID: "web"})

	body := "{\"a\":1}\n{\"a\":2}\n\n{\"a\":3}\n"
	req, err := http.NewRequest(http.MethodPost, "http://"+r.Addr().String()+"/ingest", strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-out:
		case <-time.After(time.Second):
			t.Fatalf("expected 3 queued messages from ndjson body, got %d", i)
		}
	}
}

func TestReceiverSourceIDHeaderOverridesDefault(t *testing.T) {
	r, out := startTestReceiver(t, Config{Addr: "127.0.0.1:0", DefaultSourceID: "web"})

	req, err := http.NewRequest(http.MethodPost, "http://"+r.Addr().String()+"/ingest", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("X-Source-ID", "mobile")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	select {
	case msg := <-out:
		if msg.SourceID != "mobile" {
			t.Fatalf("SourceID = %q, want mobile", msg.SourceID)
		}
	case <-time.After(time.Second):
		t.Fatal("no message queued")
	}
}

func TestReceiverMalformedJSONReturns400(t *testing.T) {
	r, _ := startTestReceiver(t, Config{Addr: "127.0.0.1:0"})

	resp, err := http.Post("http://"+r.Addr().String()+"/ingest", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestReceiverEmptyBodyReturns400(t *testing.T) {
	r, _ := startTestReceiver(t, Config{Addr: "127.0.0.1:0"})

	resp, err := http.Post("http://"+r.Addr().String()+"/ingest", "application/json", strings.NewReader(""))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeDispatcher) Route(ctx context.Context, sourceID string, event router.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sourceID)
	return f.err
}

func TestReceiverAcknowledgedModeWaitsForRouting(t *testing.T) {
	r, out := startTestReceiver(t, Config{Addr: "127.0.0.1:0", DefaultSourceID: "web"})
	dispatcher := &fakeDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Consume(ctx, out, dispatcher, nil)

	req, err := http.NewRequest(http.MethodPost, "http://"+r.Addr().String()+"/ingest", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("X-Wait-Ack", "true")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	if len(dispatcher.calls) != 1 || dispatcher.calls[0] != "web" {
		t.Fatalf("dispatcher calls = %+v", dispatcher.calls)
	}
}

func TestParseBodySingleObject(t *testing.T) {
	events, err := parseBody("application/json", []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("parseBody() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
}

func TestParseBodyRoundTripsThroughJSON(t *testing.T) {
	want := router.Event{"a": float64(1), "b": "x"}
	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	events, err := parseBody("application/json", bytes.TrimSpace(raw))
	if err != nil {
		t.Fatalf("parseBody() error = %v", err)
	}
	if len(events) != 1 || events[0]["a"] != float64(1) || events[0]["b"] != "x" {
		t.Fatalf("parseBody() = %+v", events)
	}
}
