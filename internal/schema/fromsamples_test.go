package schema

import "testing"

func TestFromSampleEventsInfersNestedTypes(t *testing.T) {
	s, err := FromSampleEvents([][]byte{
		[]byte(`{"metadata":{"status":200,"ratio":1.5,"active":true,"tags":["a","b"]}}`),
	})
	if err != nil {
		t.Fatalf("FromSampleEvents() error = %v", err)
	}
	cases := []struct {
		path string
		kind Kind
	}{
		{"metadata.status", Integer},
		{"metadata.ratio", Float},
		{"metadata.active", Boolean},
		{"metadata.tags", List},
	}
	for _, c := range cases {
		typ, ok := s.Resolve(c.path)
		if !ok {
			t.Fatalf("Resolve(%q) not found", c.path)
		}
		if typ.Kind != c.kind {
			t.Errorf("Resolve(%q).Kind = %v, want %v", c.path, typ.Kind, c.kind)
		}
	}
}

func TestFromSampleEventsRejectsMalformedJSON(t *testing.T) {
	_, err := FromSampleEvents([][]byte{[]byte("{not json")})
	if err == nil {
		t.Fatal("expected error for malformed sample JSON")
	}
}

func TestFromSampleEventsLastSampleWinsOnTypeConflict(t *testing.T) {
	s, err := FromSampleEvents([][]byte{
		[]byte(`{"metadata":{"code":"abc"}}`),
		[]byte(`{"metadata":{"code":404}}`),
	})
	if err != nil {
		t.Fatalf("FromSampleEvents() error = %v", err)
	}
	typ, ok := s.Resolve("metadata.code")
	if !ok {
		t.Fatal("Resolve(metadata.code) not found")
	}
	if typ.Kind != Integer {
		t.Errorf("Resolve(metadata.code).Kind = %v, want Integer (last sample wins)", typ.Kind)
	}
}
