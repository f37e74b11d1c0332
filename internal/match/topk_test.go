package match

import (
	"reflect"
	"testing"
)

func TestTopKOrdersByRank(t *testing.T) {
	var q topK[string]
	q.Add([]int{3}, "c")
	q.Add([]int{1}, "a")
	q.Add([]int{2}, "b")
	if got := q.Best(3); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Best(3) = %v", got)
	}
}

func TestTopKTiesKeepInsertionOrder(t *testing.T) {
	var q topK[string]
	q.Add([]int{1}, "first")
	q.Add([]int{1}, "second")
	q.Add([]int{0}, "winner")
	q.Add([]int{1}, "third")
	want := []string{"winner", "first", "second", "third"}
	if got := q.Best(4); !reflect.DeepEqual(got, want) {
		t.Errorf("Best(4) = %v, want %v", got, want)
	}
}

func TestTopKLexicographicRanks(t *testing.T) {
	var q topK[string]
	q.Add([]int{1, 0, 0}, "presence")
	q.Add([]int{0, 9, 9}, "location")
	q.Add([]int{0, 0, 1}, "scalar")
	want := []string{"scalar", "location", "presence"}
	if got := q.Best(3); !reflect.DeepEqual(got, want) {
		t.Errorf("Best(3) = %v, want %v", got, want)
	}
}

func TestTopKShorterRankWins(t *testing.T) {
	var q topK[string]
	q.Add([]int{1, 0}, "longer")
	q.Add([]int{1}, "shorter")
	if got := q.Best(2); !reflect.DeepEqual(got, []string{"shorter", "longer"}) {
		t.Errorf("Best(2) = %v", got)
	}
}

func TestTopKBestClampsToSize(t *testing.T) {
	var q topK[int]
	q.Add([]int{2}, 2)
	q.Add([]int{1}, 1)
	if got := q.Best(10); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Best(10) = %v", got)
	}
	if got := q.Best(5); len(got) != 0 {
		t.Errorf("Best after drain = %v, want empty", got)
	}
}
