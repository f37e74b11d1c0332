package match

import (
	"reflect"
	"testing"
)

func TestDiffEqualDocuments(t *testing.T) {
	comparer := NewJSONComparer(people())
	delta := comparer.Diff(people())
	if !delta.Empty() {
		t.Errorf("delta = %#v, want empty", delta)
	}
	if got := delta.EditDistance(); got != [3]int{} {
		t.Errorf("EditDistance() = %v, want zeros", got)
	}
}

func TestDiffTierExclusivity(t *testing.T) {
	scalarChanged := people()
	scalarChanged[0].(map[string]any)["first_name"] = "Bob"

	typeChanged := people()
	typeChanged[0].(map[string]any)["first_name"] = int64(7)

	// A swap is only visible to the location tier when the moved record
	// has a distinguishable signature.
	movedRef, movedCand := people(), people()
	movedRef[0], movedRef[2] = movedRef[2], movedRef[0]
	movedRef[2].(map[string]any)["foo"] = int64(42)
	movedCand[0].(map[string]any)["foo"] = int64(42)

	tests := []struct {
		name      string
		reference any
		candidate any
		tier      int
	}{
		{"scalar change", people(), scalarChanged, 2},
		{"presence change", people(), typeChanged, 0},
		{"location change", movedRef, movedCand, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := NewJSONComparer(tt.reference).Diff(tt.candidate)

			dist := delta.EditDistance()
			for i, n := range dist {
				if i == tt.tier && n == 0 {
					t.Errorf("tier %d empty, want edits", i)
				}
				if i != tt.tier && n != 0 {
					t.Errorf("tier %d has %d edits, want 0", i, n)
				}
			}
		})
	}
}

func TestDiffLocationSwap(t *testing.T) {
	reference := map[string]any{
		"a": map[string]any{"x": int64(0)},
		"b": map[string]any{},
	}
	candidate := map[string]any{
		"a": map[string]any{},
		"b": map[string]any{"x": int64(0)},
	}

	delta := NewJSONComparer(reference).Diff(candidate)
	if len(delta.Presence) != 0 {
		t.Fatalf("presence edits = %d, want 0", len(delta.Presence))
	}
	if len(delta.Location) != 2 {
		t.Fatalf("location edits = %d, want 2", len(delta.Location))
	}
	if !reflect.DeepEqual(delta.Location[0].Path, KeyPath{"a"}) {
		t.Errorf("edit 0 path = %v, want [a]", delta.Location[0].Path)
	}
	if got := delta.Location[0].Sig.Skeleton(); !reflect.DeepEqual(got, any(map[string]any{})) {
		t.Errorf("edit 0 skeleton = %#v, want empty object", got)
	}
	if !reflect.DeepEqual(delta.Location[1].Path, KeyPath{"b"}) {
		t.Errorf("edit 1 path = %v, want [b]", delta.Location[1].Path)
	}
	if got := delta.Location[1].Sig.Skeleton(); !reflect.DeepEqual(got, any(map[string]any{"x": int64(0)})) {
		t.Errorf("edit 1 skeleton = %#v, want {x: 0}", got)
	}
}

func TestEditDistanceOrdering(t *testing.T) {
	presence := Delta{Presence: make([]StructEdit, 1)}
	location := Delta{Location: make([]StructEdit, 3)}
	scalar := Delta{Scalar: make([]ScalarEdit, 9)}

	if got := presence.EditDistance(); got != [3]int{1, 0, 0} {
		t.Errorf("presence distance = %v", got)
	}
	if got := location.EditDistance(); got != [3]int{0, 3, 0} {
		t.Errorf("location distance = %v", got)
	}
	if got := scalar.EditDistance(); got != [3]int{0, 0, 9} {
		t.Errorf("scalar distance = %v", got)
	}

	// Lexicographic comparison ranks many scalar edits below one
	// relocation, and many relocations below one presence change.
	ranks := [][3]int{scalar.EditDistance(), location.EditDistance(), presence.EditDistance()}
	for i := 1; i < len(ranks); i++ {
		a, b := ranks[i-1], ranks[i]
		if !(a[0] < b[0] || (a[0] == b[0] && (a[1] < b[1] || (a[1] == b[1] && a[2] < b[2])))) {
			t.Errorf("rank %v not below %v", a, b)
		}
	}
}

func TestDiffScalarValueReported(t *testing.T) {
	reference := map[string]any{"name": "Bob", "age": int64(7)}
	candidate := map[string]any{"name": "Jeanette", "age": int64(7)}

	delta := NewJSONComparer(reference).Diff(candidate)
	want := []ScalarEdit{{Op: ScalarSet, Path: KeyPath{"name"}, Value: "Jeanette"}}
	if !reflect.DeepEqual(delta.Scalar, want) {
		t.Errorf("scalar edits = %#v, want %#v", delta.Scalar, want)
	}
}
