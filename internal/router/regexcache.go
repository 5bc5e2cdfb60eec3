package router

import (
	"container/list"
	"regexp"
	"sync"
)

// DefaultRegexCacheSize is the default capacity of a RegexCache, chosen
// generously above any realistic number of distinct regex filters a
// rule set exercises concurrently.
const DefaultRegexCacheSize = 1024

// RegexCache is a bounded, concurrency-safe LRU cache of compiled
// regular expressions, keyed by source pattern. Compilation is the one
// potentially expensive step in an otherwise cheap per-event
// evaluation, so repeated evaluation of the same RuleSet against many
// events must not recompile the same pattern per event.
//
// Adapted from the framework LRU cache pattern (container/list ring +
// map index, mutex-guarded) used for the same purpose elsewhere in the
// example corpus; simplified to a single fixed value type
// (*regexp.Regexp) since this cache has exactly one caller.
type RegexCache struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type regexEntry struct {
	pattern string
	re      *regexp.Regexp
	err     error
}

// NewRegexCache creates a RegexCache with the given capacity. A
// capacity <= 0 falls back to DefaultRegexCacheSize.
func NewRegexCache(capacity int) *RegexCache {
	if capacity <= 0 {
		capacity = DefaultRegexCacheSize
	}
	return &RegexCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Compile returns the compiled regexp for pattern, compiling and
// caching it on first use. A compile error is cached too (regexp.Regexp
// errors are deterministic), so a malformed pattern is never
// recompiled on every call.
func (c *RegexCache) Compile(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	if el, ok := c.items[pattern]; ok {
		c.order.MoveToFront(el)
		entry := el.Value.(*regexEntry)
		c.mu.Unlock()
		return entry.re, entry.err
	}
	c.mu.Unlock()

	re, err := regexp.Compile(pattern)

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[pattern]; ok {
		c.order.MoveToFront(el)
		entry := el.Value.(*regexEntry)
		return entry.re, entry.err
	}
	el := c.order.PushFront(&regexEntry{pattern: pattern, re: re, err: err})
	c.items[pattern] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			entry := oldest.Value.(*regexEntry)
			delete(c.items, entry.pattern)
			c.order.Remove(oldest)
		}
	}
	return re, err
}

// Len returns the current number of cached patterns.
func (c *RegexCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}
