// Package memory provides an in-memory ruleconfig.Store implementation,
// intended for tests and single-process deployments that don't need
// rules to survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"logroute/internal/ruleconfig"
)

// Store is an in-memory ruleconfig.Store. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	rules map[uuid.UUID]ruleconfig.RuleRecord
}

var _ ruleconfig.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{rules: make(map[uuid.UUID]ruleconfig.RuleRecord)}
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*ruleconfig.RuleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return nil, ruleconfig.ErrNotFound
	}
	rc := r
	return &rc, nil
}

func (s *Store) List(ctx context.Context, sourceID string) ([]ruleconfig.RuleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ruleconfig.RuleRecord, 0, len(s.rules))
	for _, r := range s.rules {
		if sourceID != "" && r.SourceID != sourceID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, r ruleconfig.RuleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID] = r
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, id)
	return nil
}
