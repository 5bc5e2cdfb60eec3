package route

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"logroute/internal/router"
	"logroute/internal/ruleconfig"
	"logroute/internal/ruleconfig/memory"
	"logroute/internal/schema"
	"logroute/internal/sink"
)

type recordingSink struct {
	mu     sync.Mutex
	events []router.Event
}

func (s *recordingSink) Forward(ctx context.Context, e router.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func testSchema() schema.Schema {
	return schema.NewBuilder().WithTypes(map[string]schema.Type{
		"metadata.status": {Kind: schema.Integer},
	}).Build()
}

func newTestRouter(t *testing.T) (*Router, *memory.Store, *sink.Registry) {
	t.Helper()
	store := memory.New()
	registry := sink.NewRegistry()
	r := New(Config{Store: store, Sinks: registry, Schema: testSchema()})
	return r, store, registry
}

func TestRouteForwardsOnExpressionMatch(t *testing.T) {
	r, store, registry := newTestRouter(t)
	a := &recordingSink{}
	registry.Register("a", a)

	if err := store.Put(context.Background(), ruleconfig.RuleRecord{
		ID: uuid.New(), SourceID: "web", Name: "errors",
		Query: "metadata.status:500", Sinks: []string{"a"},
	}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	event := router.Event{"metadata": map[string]any{"status": float64(500)}}
	if err := r.Route(context.Background(), "web", event); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if a.count() != 1 {
		t.Fatalf("sink a got %d events, want 1", a.count())
	}
}

func TestRouteSkipsNonMatchingRule(t *testing.T) {
	r, store, registry := newTestRouter(t)
	a := &recordingSink{}
	registry.Register("a", a)

	if err := store.Put(context.Background(), ruleconfig.RuleRecord{
		ID: uuid.New(), SourceID: "web", Query: "metadata.status:500", Sinks: []string{"a"},
	}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	event := router.Event{"metadata": map[string]any{"status": float64(200)}}
	if err := r.Route(context.Background(), "web", event); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if a.count() != 0 {
		t.Fatalf("sink a got %d events, want 0", a.count())
	}
}

func TestRouteMatchingTwoRulesForwardsToBothSinks(t *testing.T) {
	r, store, registry := newTestRouter(t)
	a, b := &recordingSink{}, &recordingSink{}
	registry.Register("a", a)
	registry.Register("b", b)

	ctx := context.Background()
	if err := store.Put(ctx, ruleconfig.RuleRecord{ID: uuid.New(), SourceID: "web", Query: "metadata.status:500", Sinks: []string{"a"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, ruleconfig.RuleRecord{ID: uuid.New(), SourceID: "web", CatchAll: true, Sinks: []string{"b"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	event := router.Event{"metadata": map[string]any{"status": float64(500)}}
	if err := r.Route(ctx, "web", event); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("expected exactly one event at each sink, got a=%d b=%d", a.count(), b.count())
	}
}

func TestRouteCatchRestOnlyFiresWhenNothingElseMatched(t *testing.T) {
	r, store, registry := newTestRouter(t)
	specific, rest := &recordingSink{}, &recordingSink{}
	registry.Register("specific", specific)
	registry.Register("rest", rest)

	ctx := context.Background()
	if err := store.Put(ctx, ruleconfig.RuleRecord{ID: uuid.New(), SourceID: "web", Query: "metadata.status:500", Sinks: []string{"specific"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, ruleconfig.RuleRecord{ID: uuid.New(), SourceID: "web", CatchRest: true, Sinks: []string{"rest"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := r.Route(ctx, "web", router.Event{"metadata": map[string]any{"status": float64(500)}}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if specific.count() != 1 || rest.count() != 0 {
		t.Fatalf("expected specific rule to win, got specific=%d rest=%d", specific.count(), rest.count())
	}

	if err := r.Route(ctx, "web", router.Event{"metadata": map[string]any{"status": float64(200)}}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if rest.count() != 1 {
		t.Fatalf("expected catch-rest to fire for unmatched event, got %d", rest.count())
	}
}

func TestRouteMatchingNoRuleForwardsNowhere(t *testing.T) {
	r, _, registry := newTestRouter(t)
	a := &recordingSink{}
	registry.Register("a", a)

	if err := r.Route(context.Background(), "web", router.Event{"anything": "goes"}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if a.count() != 0 {
		t.Fatalf("expected no forwards, got %d", a.count())
	}
}

func TestRouteSkipsDisabledRules(t *testing.T) {
	r, store, registry := newTestRouter(t)
	a := &recordingSink{}
	registry.Register("a", a)

	if err := store.Put(context.Background(), ruleconfig.RuleRecord{
		ID: uuid.New(), SourceID: "web", Query: "metadata.status:500", Sinks: []string{"a"}, Disabled: true,
	}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := r.Route(context.Background(), "web", router.Event{"metadata": map[string]any{"status": float64(500)}}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if a.count() != 0 {
		t.Fatalf("expected disabled rule to be skipped, got %d events", a.count())
	}
}

func TestRouteIgnoresRulesForOtherSources(t *testing.T) {
	r, store, registry := newTestRouter(t)
	a := &recordingSink{}
	registry.Register("a", a)

	if err := store.Put(context.Background(), ruleconfig.RuleRecord{
		ID: uuid.New(), SourceID: "mobile", CatchAll: true, Sinks: []string{"a"},
	}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := r.Route(context.Background(), "web", router.Event{"anything": "goes"}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if a.count() != 0 {
		t.Fatalf("expected rule scoped to a different source to be ignored, got %d", a.count())
	}
}

func TestRouteSkipsRuleWithInvalidQuery(t *testing.T) {
	r, store, registry := newTestRouter(t)
	a := &recordingSink{}
	registry.Register("a", a)

	if err := store.Put(context.Background(), ruleconfig.RuleRecord{
		ID: uuid.New(), SourceID: "web", Query: "metadata.status:500..100", Sinks: []string{"a"},
	}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := r.Route(context.Background(), "web", router.Event{"anything": "goes"}); err != nil {
		t.Fatalf("Route() with an invalid rule query error = %v, want nil (bad rules are skipped, not fatal)", err)
	}
}
