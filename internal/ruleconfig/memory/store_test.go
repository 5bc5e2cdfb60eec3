package memory

import (
	"testing"

	"logroute/internal/ruleconfig"
	"logroute/internal/ruleconfig/storetest"
)

func TestStore(t *testing.T) {
	storetest.TestStore(t, func(t *testing.T) ruleconfig.Store {
		return New()
	})
}
