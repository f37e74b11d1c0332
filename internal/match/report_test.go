package match

import (
	"reflect"
	"testing"
)

func TestScalarEditsJSONData(t *testing.T) {
	edits := []ScalarEdit{
		{Op: ScalarSet, Path: KeyPath{0, "name"}, Value: "Jeanette"},
		{Op: ScalarDel, Path: KeyPath{1}},
		{Op: ScalarIns, Value: "extra"},
	}
	want := []any{
		map[string]any{"set": []any{int64(0), "name"}, "to": "Jeanette"},
		map[string]any{"del": []any{int64(1)}},
		map[string]any{},
	}
	if got := scalarEditsJSONData(edits); !reflect.DeepEqual(got, want) {
		t.Errorf("scalarEditsJSONData = %#v, want %#v", got, want)
	}
}

func TestDeltaJSONDataSingleTier(t *testing.T) {
	d := Delta{Scalar: []ScalarEdit{{Op: ScalarDel, Path: KeyPath{"x"}}}}
	got, ok := deltaJSONData(d).(map[string]any)
	if !ok {
		t.Fatalf("deltaJSONData = %T, want object", deltaJSONData(d))
	}
	if len(got) != 1 {
		t.Errorf("keys = %d, want exactly one tier", len(got))
	}
	if _, ok := got["alter scalar values"]; !ok {
		t.Errorf("missing scalar tier key: %#v", got)
	}

	if deltaJSONData(Delta{}) != nil {
		t.Error("empty delta should render as nil")
	}
}
