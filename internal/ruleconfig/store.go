// Package ruleconfig persists named routing rules: the LQL query text
// (parsed by internal/lql only when a rule is evaluated) plus the
// destination sinks it should route matching events to. route.Router
// lists a source's rules from the Store on every Route call.
package ruleconfig

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no rule exists for the given ID.
var ErrNotFound = errors.New("ruleconfig: rule not found")

// RuleRecord is a single named, persisted routing rule scoped to one
// event source. Query is the LQL source text, re-parsed against the
// current schema whenever the rule is loaded into an evaluator — Store
// never interprets it, so a rule referencing a field the schema has
// not seen yet can still be saved (and will fail to route, rather than
// fail to save, if that field never appears).
//
// CatchAll and CatchRest are shortcuts alongside Query: CatchAll
// always matches regardless of Query, and CatchRest matches only
// events that no other rule for the same SourceID matched. At most one
// of CatchAll/CatchRest should be set; Query is ignored when either is.
type RuleRecord struct {
	ID        uuid.UUID
	SourceID  string // event source this rule is scoped to
	Name      string
	Query     string
	Sinks     []string // sink IDs events matching Query are forwarded to
	CatchAll  bool
	CatchRest bool
	Disabled  bool
	UpdatedAt time.Time
}

// Store persists and loads the set of configured rules. It does not
// validate Query against a schema or resolve Sinks against a live
// registry — route.Router does both each time it routes an event.
type Store interface {
	// Get returns a single rule by ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*RuleRecord, error)

	// List returns every configured rule scoped to sourceID, in no
	// particular order. An empty sourceID returns every rule regardless
	// of source.
	List(ctx context.Context, sourceID string) ([]RuleRecord, error)

	// Put creates or replaces the rule with the same ID.
	Put(ctx context.Context, r RuleRecord) error

	// Delete removes a rule by ID. Deleting a rule that does not exist
	// is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
