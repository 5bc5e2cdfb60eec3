package router

import (
	"reflect"
	"testing"
)

func TestExtractSimplePath(t *testing.T) {
	ev := Event{"metadata": map[string]any{"user": map[string]any{"id": "u1"}}}
	got := Extract(ev, "metadata.user.id")
	if !reflect.DeepEqual(got, []any{"u1"}) {
		t.Fatalf("Extract() = %+v, want [u1]", got)
	}
}

func TestExtractMissingPath(t *testing.T) {
	ev := Event{"metadata": map[string]any{}}
	got := Extract(ev, "metadata.user.id")
	if len(got) != 0 {
		t.Fatalf("Extract() = %+v, want empty", got)
	}
}

func TestExtractListOfMapsFansOutExistentially(t *testing.T) {
	ev := Event{
		"metadata": map[string]any{
			"requests": []any{
				map[string]any{"status": float64(200)},
				map[string]any{"status": float64(404)},
				map[string]any{"other": "x"},
			},
		},
	}
	got := Extract(ev, "metadata.requests.status")
	if !reflect.DeepEqual(got, []any{float64(200), float64(404)}) {
		t.Fatalf("Extract() = %+v", got)
	}
}

func TestFlattenLeavesExpandsLists(t *testing.T) {
	in := []any{"a", []any{"b", "c"}}
	got := flattenLeaves(in)
	want := []any{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("flattenLeaves() = %+v, want %+v", got, want)
	}
}
