package match

import (
	"reflect"
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  []Param
	}{
		{"empty", "", nil},
		{"single", "a=1", []Param{{"a", "1"}}},
		{"multiple", "a=1&b=2", []Param{{"a", "1"}, {"b", "2"}}},
		{"repeated name", "a=1&a=2", []Param{{"a", "1"}, {"a", "2"}}},
		{"drops bare flag", "flag&b=2", []Param{{"b", "2"}}},
		{"drops empty value", "a=&b=2", []Param{{"b", "2"}}},
		{"drops empty pair", "&&a=1", []Param{{"a", "1"}}},
		{"unescapes", "a=hello%20world", []Param{{"a", "hello world"}}},
		{"keeps bad escape verbatim", "a=%zz&b=2", []Param{{"a", "%zz"}, {"b", "2"}}},
		{"keeps bad escape in name", "a%zz=1", []Param{{"a%zz", "1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuery(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseQuery(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSortParamsStable(t *testing.T) {
	params := []Param{{"b", "1"}, {"a", "9"}, {"b", "2"}}
	got := SortParams(params)
	want := []Param{{"a", "9"}, {"b", "1"}, {"b", "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortParams = %#v, want %#v", got, want)
	}
	// The input sequence is left untouched.
	if !reflect.DeepEqual(params, []Param{{"b", "1"}, {"a", "9"}, {"b", "2"}}) {
		t.Errorf("input mutated: %#v", params)
	}
}

func TestQStringComparerNoDiff(t *testing.T) {
	params := []Param{{"a", "1"}, {"b", "2"}}
	delta := NewQStringComparer(params).Diff(params)
	if !reflect.DeepEqual(delta, QueryDelta{}) {
		t.Errorf("delta = %#v, want zero", delta)
	}
}

func TestQStringComparerRenamedParam(t *testing.T) {
	delta := NewQStringComparer([]Param{{"old", "1"}}).Diff([]Param{{"new", "1"}})
	if delta.Edits != 1 {
		t.Errorf("edits = %d, want 1", delta.Edits)
	}
	wantMods := []QueryMod{
		{Field: "old", Op: "del", Value: "1"},
		{Field: "new", Op: "add", Value: "1"},
	}
	if !reflect.DeepEqual(delta.Mods, wantMods) {
		t.Errorf("mods = %#v, want %#v", delta.Mods, wantMods)
	}
	wantParams := map[string][]string{"new": {"1"}}
	if !reflect.DeepEqual(delta.Params, wantParams) {
		t.Errorf("params = %#v, want %#v", delta.Params, wantParams)
	}
}
