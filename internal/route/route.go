// Package route glues ruleconfig.Store, the lql/router matching core,
// and a sink.Registry into a working pipeline: for each ingested
// event it lists the rules owned by the event's source, evaluates each
// one, and forwards matches to that rule's configured sinks.
//
// Matching is two-pass: catch-all rules always match, plain rules are
// evaluated as expressions, and catch-rest rules only fire if nothing
// else matched.
package route

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"logroute/internal/lql"
	"logroute/internal/logging"
	"logroute/internal/router"
	"logroute/internal/ruleconfig"
	"logroute/internal/schema"
	"logroute/internal/sink"
)

// Router evaluates ingested events against the configured RuleRecords
// for their source and forwards matches to the corresponding sinks.
type Router struct {
	store  ruleconfig.Store
	sinks  *sink.Registry
	cache  *router.RegexCache
	logger *slog.Logger

	mu     sync.RWMutex
	schema schema.Schema
}

// Config holds Router construction parameters.
type Config struct {
	Store  ruleconfig.Store
	Sinks  *sink.Registry
	Schema schema.Schema
	Logger *slog.Logger
}

// New creates a Router. Schema may be updated later via SetSchema as
// the event shape is learned or a new sample set is loaded.
func New(cfg Config) *Router {
	return &Router{
		store:  cfg.Store,
		sinks:  cfg.Sinks,
		cache:  router.NewRegexCache(router.DefaultRegexCacheSize),
		schema: cfg.Schema,
		logger: logging.Default(cfg.Logger).With("component", "route", "type", "router"),
	}
}

// SetSchema replaces the schema used to parse rule queries. Safe to
// call concurrently with Route.
func (r *Router) SetSchema(s schema.Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schema = s
}

func (r *Router) currentSchema() schema.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schema
}

// Route evaluates event against every enabled rule owned by sourceID
// and forwards it to each matched rule's sinks. A rule whose Query
// fails to parse against the current schema is logged and skipped —
// one bad rule must not block routing for the rest.
//
// Route never persists event, generates SQL, or performs
// auth/rate-limiting; it only matches and forwards.
func (r *Router) Route(ctx context.Context, sourceID string, event router.Event) error {
	rules, err := r.store.List(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("list rules for source %q: %w", sourceID, err)
	}

	sch := r.currentSchema()

	type match struct {
		rule  ruleconfig.RuleRecord
		sinks []string
	}

	var matched []match
	matchedExpr := false
	var catchRest []ruleconfig.RuleRecord

	for _, rule := range rules {
		if rule.Disabled {
			continue
		}
		switch {
		case rule.CatchAll:
			matched = append(matched, match{rule: rule, sinks: rule.Sinks})
			matchedExpr = true
		case rule.CatchRest:
			catchRest = append(catchRest, rule)
		default:
			rs, err := lql.Parse(rule.Query, sch)
			if err != nil {
				r.logger.Error("skipping rule with invalid query", "rule_id", rule.ID, "error", err)
				continue
			}
			if router.MatchesAll(event, rs.Search, r.cache) {
				matched = append(matched, match{rule: rule, sinks: rule.Sinks})
				matchedExpr = true
			}
		}
	}

	if !matchedExpr {
		for _, rule := range catchRest {
			matched = append(matched, match{rule: rule, sinks: rule.Sinks})
		}
	}

	var firstErr error
	for _, m := range matched {
		for _, sinkID := range m.sinks {
			snk, ok := r.sinks.Get(sinkID)
			if !ok {
				r.logger.Error("rule references unknown sink", "rule_id", m.rule.ID, "sink_id", sinkID)
				continue
			}
			if err := snk.Forward(ctx, event); err != nil {
				r.logger.Error("forward failed", "rule_id", m.rule.ID, "sink_id", sinkID, "error", err)
				if firstErr == nil {
					firstErr = fmt.Errorf("forward to sink %q: %w", sinkID, err)
				}
			}
		}
	}
	return firstErr
}
