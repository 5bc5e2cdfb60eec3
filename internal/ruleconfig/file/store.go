// Package file provides a file-based ruleconfig.Store implementation.
//
// Rules are persisted as a single versioned JSON envelope:
//
//	{"version": 1, "rules": [ ... ]}
//
// Every mutation (Put/Delete) loads the full file, mutates in memory,
// and atomically flushes the whole file back — the file is small
// control-plane state, not a write-heavy log.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"logroute/internal/ruleconfig"
)

const currentVersion = 1

type envelope struct {
	Version int                     `json:"version"`
	Rules   []ruleconfig.RuleRecord `json:"rules"`
}

// Store is a file-based ruleconfig.Store. Reads re-parse the file on
// every call (rule sets are small; staleness matters more than a
// cache), so an external watcher can call Watch to pick up edits made
// by another process.
type Store struct {
	path string

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	watchDone chan struct{}
}

var _ ruleconfig.Store = (*Store)(nil)

// New creates a file-based Store backed by path. The file need not
// exist yet; it is created on first Put.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*ruleconfig.RuleRecord, error) {
	env, err := s.load()
	if err != nil {
		return nil, err
	}
	for i, r := range env.Rules {
		if r.ID == id {
			return &env.Rules[i], nil
		}
	}
	return nil, ruleconfig.ErrNotFound
}

func (s *Store) List(ctx context.Context, sourceID string) ([]ruleconfig.RuleRecord, error) {
	env, err := s.load()
	if err != nil {
		return nil, err
	}
	if sourceID == "" {
		return env.Rules, nil
	}
	out := make([]ruleconfig.RuleRecord, 0, len(env.Rules))
	for _, r := range env.Rules {
		if r.SourceID == sourceID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, rule ruleconfig.RuleRecord) error {
	env, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i, r := range env.Rules {
		if r.ID == rule.ID {
			env.Rules[i] = rule
			replaced = true
			break
		}
	}
	if !replaced {
		env.Rules = append(env.Rules, rule)
	}
	return s.flush(env)
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	env, err := s.load()
	if err != nil {
		return err
	}
	out := env.Rules[:0]
	for _, r := range env.Rules {
		if r.ID != id {
			out = append(out, r)
		}
	}
	env.Rules = out
	return s.flush(env)
}

func (s *Store) load() (envelope, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return envelope{Version: currentVersion}, nil
		}
		return envelope{}, fmt.Errorf("read rule config %q: %w", s.path, err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("parse rule config %q: %w", s.path, err)
	}
	if env.Version > currentVersion {
		return envelope{}, fmt.Errorf("rule config version %d is newer than supported version %d", env.Version, currentVersion)
	}
	return env, nil
}

// flush atomically writes env to disk via a temp file plus rename, with
// round-trip validation before the rename lands.
func (s *Store) flush(env envelope) error {
	if env.Version == 0 {
		env.Version = currentVersion
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create rule config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rule config: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp rule config: %w", err)
	}

	check, err := os.ReadFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("read back temp rule config: %w", err)
	}
	var verify envelope
	if err := json.Unmarshal(check, &verify); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("round-trip validation failed: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename rule config into place: %w", err)
	}
	return nil
}

// Watch starts watching the backing file for writes made by another
// process, invoking onChange after each detected write, create or
// rename event.
// Calling Watch again replaces the previous watch. Callers that only
// ever mutate the Store through this process's own Put/Delete don't
// need Watch.
func (s *Store) Watch(onChange func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatchLocked()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if dir == "" {
		dir = "."
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	s.watcher = w
	s.watchDone = make(chan struct{})
	go s.watchLoop(w, onChange, s.watchDone)
	return nil
}

func (s *Store) watchLoop(w *fsnotify.Watcher, onChange func(), done chan struct{}) {
	defer close(done)
	target := filepath.Base(s.path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				onChange()
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the file watcher, if one is running.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchLocked()
	return nil
}

func (s *Store) stopWatchLocked() {
	if s.watcher != nil {
		_ = s.watcher.Close()
		<-s.watchDone
		s.watcher = nil
		s.watchDone = nil
	}
}
