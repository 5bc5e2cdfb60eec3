// Package router evaluates parsed LQL RuleSets against structured log
// events: Matches(event, rule) is total and non-throwing, dotted-path
// extraction fans out across list-of-maps the way a document store's
// existential array query does, and operator comparisons widen
// numeric types the same way lql.Value.Equal/Less do.
package router

// Event is a single structured log record: an arbitrary JSON-shaped
// document. Values are whatever encoding/json produces when decoding
// into interface{} — map[string]any, []any, string, float64, bool, or
// nil — plus time.Time for callers that construct Events
// programmatically rather than from raw JSON.
type Event map[string]any
