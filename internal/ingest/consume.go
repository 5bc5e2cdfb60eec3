package ingest

import (
	"context"
	"log/slog"

	"logroute/internal/logging"
	"logroute/internal/router"
)

// Dispatcher is the subset of route.Router that Consume needs.
// Declared here rather than imported so ingest never depends on
// route, keeping the receiver testable in isolation from routing.
type Dispatcher interface {
	Route(ctx context.Context, sourceID string, event router.Event) error
}

// Consume drains messages from in, routes each one through d, and
// acks it if it carries an Ack channel. It returns when in is closed
// or ctx is cancelled.
func Consume(ctx context.Context, in <-chan Message, d Dispatcher, logger *slog.Logger) {
	logger = logging.Default(logger).With("component", "ingest", "type", "consumer")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			err := d.Route(ctx, msg.SourceID, msg.Event)
			if err != nil {
				logger.Error("route failed", "source_id", msg.SourceID, "error", err)
			}
			if msg.Ack != nil {
				msg.Ack <- err
			}
		}
	}
}
