package sqlite

import (
	"path/filepath"
	"testing"

	"logroute/internal/ruleconfig"
	"logroute/internal/ruleconfig/storetest"
)

func TestStore(t *testing.T) {
	storetest.TestStore(t, func(t *testing.T) ruleconfig.Store {
		s, err := Open(filepath.Join(t.TempDir(), "rules.db"))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}
