package match

import "container/heap"

// ranked is a heap entry: an item with its rank and insertion index. Ranks
// compare lexicographically; equal ranks fall back to insertion order so
// ties keep the catalogue's original case order.
type ranked[T any] struct {
	rank []int
	idx  int
	item T
}

type rankHeap[T any] []ranked[T]

func (h rankHeap[T]) Len() int { return len(h) }

func (h rankHeap[T]) Less(i, j int) bool {
	a, b := h[i], h[j]
	for n := 0; n < len(a.rank) && n < len(b.rank); n++ {
		if a.rank[n] != b.rank[n] {
			return a.rank[n] < b.rank[n]
		}
	}
	if len(a.rank) != len(b.rank) {
		return len(a.rank) < len(b.rank)
	}
	return a.idx < b.idx
}

func (h rankHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankHeap[T]) Push(x any) { *h = append(*h, x.(ranked[T])) }

func (h *rankHeap[T]) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// topK is a min-priority queue over ranked items. Push everything, then
// Best(k) pops the k smallest.
type topK[T any] struct {
	entries rankHeap[T]
	next    int
}

func (q *topK[T]) Add(rank []int, item T) {
	heap.Push(&q.entries, ranked[T]{rank: rank, idx: q.next, item: item})
	q.next++
}

func (q *topK[T]) Best(k int) []T {
	if k > q.entries.Len() {
		k = q.entries.Len()
	}
	best := make([]T, 0, k)
	for len(best) < k {
		best = append(best, heap.Pop(&q.entries).(ranked[T]).item)
	}
	return best
}
