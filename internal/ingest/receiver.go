// Package ingest provides an HTTP receiver that accepts structured
// events via POST requests and hands them to a channel for routing.
//
// A plain net/http server (there is exactly one route, so a router
// library would add nothing), POST /ingest with a fire-and-forget/
// acknowledged mode split via X-Wait-Ack, and io.LimitReader-bounded
// body reads.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"logroute/internal/logging"
	"logroute/internal/router"
)

// maxBodyBytes bounds a single request body.
const maxBodyBytes = 10 << 20

// Message is a single event queued for routing.
type Message struct {
	SourceID string
	Event    router.Event

	// Ack, if non-nil, must be sent exactly once by the consumer to
	// unblock an acknowledged-mode request.
	Ack chan<- error
}

// Receiver accepts events via HTTP POST requests.
//
// Endpoints:
//   - POST /ingest - accepts one event, an array of events, or an
//     application/x-ndjson stream of events
//
// Request modes:
//   - Fire-and-forget: returns 202 Accepted immediately after queuing
//   - Acknowledged: returns 200 OK once every event has been routed
//     (X-Wait-Ack: true header)
//
// The event source is taken from the X-Source-ID header, falling back
// to Config.DefaultSourceID when absent.
type Receiver struct {
	addr            string
	defaultSourceID string
	listener        net.Listener
	server          *http.Server
	out             chan<- Message
	logger          *slog.Logger
}

// Config holds ingest receiver configuration.
type Config struct {
	// Addr is the address to listen on (e.g., ":8090").
	Addr string

	// DefaultSourceID is used when a request carries no X-Source-ID
	// header.
	DefaultSourceID string

	Logger *slog.Logger
}

// New creates a new ingest receiver.
func New(cfg Config) *Receiver {
	return &Receiver{
		addr:            cfg.Addr,
		defaultSourceID: cfg.DefaultSourceID,
		logger:          logging.Default(cfg.Logger).With("component", "ingest", "type", "http"),
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (r *Receiver) Run(ctx context.Context, out chan<- Message) error {
	r.out = out

	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", r.handleIngest)

	r.server = &http.Server{Handler: mux}

	var err error
	r.listener, err = net.Listen("tcp", r.addr)
	if err != nil {
		return err
	}

	r.logger.Info("ingest receiver starting", "addr", r.listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := r.server.Serve(r.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("ingest receiver stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the listener address. Only valid after Run() has started.
func (r *Receiver) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

func (r *Receiver) handleIngest(w http.ResponseWriter, req *http.Request) {
	waitAck := req.Header.Get("X-Wait-Ack") == "true"

	sourceID := req.Header.Get("X-Source-ID")
	if sourceID == "" {
		sourceID = r.defaultSourceID
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	events, err := parseBody(req.Header.Get("Content-Type"), body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(events) == 0 {
		http.Error(w, "no events in request", http.StatusBadRequest)
		return
	}

	messages := make([]Message, len(events))
	for i, e := range events {
		messages[i] = Message{SourceID: sourceID, Event: e}
	}

	if waitAck {
		r.sendAcknowledged(w, req, messages)
	} else {
		r.sendFireAndForget(w, req, messages)
	}
}

func (r *Receiver) sendFireAndForget(w http.ResponseWriter, req *http.Request, messages []Message) {
	for _, msg := range messages {
		select {
		case r.out <- msg:
		case <-req.Context().Done():
			http.Error(w, "request cancelled", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("X-Events-Received", strconv.Itoa(len(messages)))
	w.WriteHeader(http.StatusAccepted)
}

func (r *Receiver) sendAcknowledged(w http.ResponseWriter, req *http.Request, messages []Message) {
	ackCh := make(chan error, len(messages))
	for i := range messages {
		messages[i].Ack = ackCh
	}

	for _, msg := range messages {
		select {
		case r.out <- msg:
		case <-req.Context().Done():
			http.Error(w, "request cancelled", http.StatusServiceUnavailable)
			return
		}
	}

	var routeErr error
	for range messages {
		select {
		case err := <-ackCh:
			if err != nil && routeErr == nil {
				routeErr = err
			}
		case <-req.Context().Done():
			http.Error(w, "request cancelled", http.StatusServiceUnavailable)
			return
		}
	}

	if routeErr != nil {
		http.Error(w, routeErr.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Events-Received", strconv.Itoa(len(messages)))
	w.WriteHeader(http.StatusOK)
}

// parseBody decodes body into events per contentType: a JSON object, a
// JSON array of objects, or (for application/x-ndjson) one JSON object
// per non-empty line.
func parseBody(contentType string, body []byte) ([]router.Event, error) {
	if len(body) == 0 {
		return nil, nil
	}

	if contentType == "application/x-ndjson" || contentType == "application/jsonl" {
		return parseNDJSON(body)
	}

	var arr []router.Event
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr, nil
	}

	var single router.Event
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, errors.New("invalid JSON event body")
	}
	return []router.Event{single}, nil
}

func parseNDJSON(body []byte) ([]router.Event, error) {
	var events []router.Event
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e router.Event
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, errors.New("invalid JSON event in ndjson body")
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
