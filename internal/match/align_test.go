package match

import (
	"reflect"
	"testing"
)

func TestAlignKeysEqual(t *testing.T) {
	a := []string{"x", "y", "z"}
	got := alignKeys(a, []string{"x", "y", "z"})
	want := []opCode{{op: opEqual, i1: 0, i2: 3, j1: 0, j2: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignKeys = %#v, want %#v", got, want)
	}
}

func TestAlignKeysMixed(t *testing.T) {
	a := []string{"a", "b", "c", "d"}
	b := []string{"a", "x", "c"}
	got := alignKeys(a, b)
	want := []opCode{
		{op: opEqual, i1: 0, i2: 1, j1: 0, j2: 1},
		{op: opReplace, i1: 1, i2: 2, j1: 1, j2: 2},
		{op: opEqual, i1: 2, i2: 3, j1: 2, j2: 3},
		{op: opDelete, i1: 3, i2: 4, j1: 3, j2: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignKeys = %#v, want %#v", got, want)
	}
}

func TestAlignKeysInsert(t *testing.T) {
	got := alignKeys([]string{"b"}, []string{"a", "b"})
	want := []opCode{
		{op: opInsert, i1: 0, i2: 0, j1: 0, j2: 1},
		{op: opEqual, i1: 0, i2: 1, j1: 1, j2: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignKeys = %#v, want %#v", got, want)
	}
}

func TestAlignKeysDuplicates(t *testing.T) {
	got := alignKeys([]string{"a", "a"}, []string{"a"})
	want := []opCode{
		{op: opEqual, i1: 0, i2: 1, j1: 0, j2: 1},
		{op: opDelete, i1: 1, i2: 2, j1: 1, j2: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignKeys = %#v, want %#v", got, want)
	}
}

func TestAlignKeysEmpty(t *testing.T) {
	if got := alignKeys(nil, nil); len(got) != 0 {
		t.Errorf("alignKeys(nil, nil) = %#v, want none", got)
	}
	got := alignKeys(nil, []string{"a"})
	want := []opCode{{op: opInsert, i1: 0, i2: 0, j1: 0, j2: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("alignKeys = %#v, want %#v", got, want)
	}
}

func TestBlockSpans(t *testing.T) {
	op := opCode{op: opReplace, i1: 0, i2: 3, j1: 0, j2: 1}
	if got := pairedSpan(op); got != 1 {
		t.Errorf("pairedSpan = %d, want 1", got)
	}
	if got := blockCost(op); got != 3 {
		t.Errorf("blockCost = %d, want 3", got)
	}
}

func TestMatchingBlocksSentinel(t *testing.T) {
	// The longest run comes out as one block followed by the terminating
	// zero-length sentinel.
	a := []string{"p", "q", "r", "s"}
	b := []string{"x", "p", "q", "r", "s"}
	got := matchingBlocks(a, b)
	want := []matchBlock{{a: 0, b: 1, size: 4}, {a: 4, b: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("matchingBlocks = %#v, want %#v", got, want)
	}
}
