// Package storetest provides a shared conformance test suite for
// ruleconfig.Store implementations. Each backend (memory, file,
// sqlite) wires this suite to verify it satisfies the full Store
// contract identically.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"logroute/internal/ruleconfig"
)

func newID() uuid.UUID { return uuid.New() }

// TestStore runs the full conformance suite against a Store
// implementation. newStore must return a fresh, empty store for each
// sub-test.
func TestStore(t *testing.T, newStore func(t *testing.T) ruleconfig.Store) {
	t.Run("GetMissingReturnsNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), newID())
		if !errors.Is(err, ruleconfig.ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := newStore(t)
		rules, err := s.List(context.Background(), "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(rules) != 0 {
			t.Fatalf("List() = %+v, want empty", rules)
		}
	})

	t.Run("PutGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := newID()
		rule := ruleconfig.RuleRecord{ID: id, SourceID: "web", Name: "errors", Query: "metadata.level:error", Sinks: []string{"kafka-main"}}
		if err := s.Put(ctx, rule); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Name != rule.Name || got.Query != rule.Query || got.SourceID != rule.SourceID || len(got.Sinks) != 1 || got.Sinks[0] != "kafka-main" {
			t.Fatalf("Get() = %+v, want %+v", got, rule)
		}
	})

	t.Run("PutOverwritesSameID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := newID()
		if err := s.Put(ctx, ruleconfig.RuleRecord{ID: id, Name: "v1", Query: "a"}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Put(ctx, ruleconfig.RuleRecord{ID: id, Name: "v2", Query: "b"}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Name != "v2" || got.Query != "b" {
			t.Fatalf("Get() = %+v, want overwritten values", got)
		}
		rules, err := s.List(ctx, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(rules) != 1 {
			t.Fatalf("List() = %+v, want exactly 1 rule after overwrite", rules)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := newID()
		if err := s.Put(ctx, ruleconfig.RuleRecord{ID: id, Name: "gone-soon", Query: "a"}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Delete(ctx, id); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		_, err := s.Get(ctx, id)
		if !errors.Is(err, ruleconfig.ErrNotFound) {
			t.Fatalf("Get() after Delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteMissingIsNotAnError", func(t *testing.T) {
		s := newStore(t)
		if err := s.Delete(context.Background(), newID()); err != nil {
			t.Fatalf("Delete() of missing rule error = %v, want nil", err)
		}
	})

	t.Run("ListReflectsMultiplePuts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, name := range []string{"a", "b", "c"} {
			if err := s.Put(ctx, ruleconfig.RuleRecord{ID: newID(), Name: name, Query: "x"}); err != nil {
				t.Fatalf("Put(%q) error = %v", name, err)
			}
		}
		rules, err := s.List(ctx, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(rules) != 3 {
			t.Fatalf("List() = %+v, want 3 rules", rules)
		}
	})

	t.Run("ListFiltersBySourceID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Put(ctx, ruleconfig.RuleRecord{ID: newID(), SourceID: "web", Name: "a", Query: "x"}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Put(ctx, ruleconfig.RuleRecord{ID: newID(), SourceID: "mobile", Name: "b", Query: "x"}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		rules, err := s.List(ctx, "web")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(rules) != 1 || rules[0].SourceID != "web" {
			t.Fatalf("List(%q) = %+v, want exactly the web rule", "web", rules)
		}
	})
}
