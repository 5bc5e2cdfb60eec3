package schema

import "encoding/json"

// FromSampleEvents builds a Schema by inferring types from one or more
// sample JSON event documents. Each element of raw must decode into a
// JSON object; nested objects and lists are handled exactly as
// Builder.WithSamples documents. When samples disagree on a path's
// type, the last sample given wins.
func FromSampleEvents(raw [][]byte) (Schema, error) {
	b := NewBuilder()
	for _, doc := range raw {
		var sample map[string]any
		if err := json.Unmarshal(doc, &sample); err != nil {
			return Schema{}, err
		}
		b.WithSamples("", sample)
	}
	return b.Build(), nil
}
