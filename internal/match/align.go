package match

import "sort"

// Sequence alignment over canonical string keys. This is the classic
// longest-matching-block algorithm: recursively find the longest run of
// equal elements, then align what lies to each side of it. Every diff in
// this package (signatures, locations, scalars, query pairs, field sets)
// reduces to aligning two key sequences.

type opType byte

const (
	opEqual opType = iota
	opReplace
	opDelete
	opInsert
)

// opCode describes how a[i1:i2] maps onto b[j1:j2].
type opCode struct {
	op             opType
	i1, i2, j1, j2 int
}

type matchBlock struct {
	a, b, size int
}

// alignKeys computes the edit opcodes turning sequence a into sequence b.
func alignKeys(a, b []string) []opCode {
	blocks := matchingBlocks(a, b)

	var ops []opCode
	i, j := 0, 0
	for _, blk := range blocks {
		var op opType
		switch {
		case i < blk.a && j < blk.b:
			op = opReplace
		case i < blk.a:
			op = opDelete
		case j < blk.b:
			op = opInsert
		default:
			op = opEqual // zero-length gap, skipped below
		}
		if i < blk.a || j < blk.b {
			ops = append(ops, opCode{op: op, i1: i, i2: blk.a, j1: j, j2: blk.b})
		}
		i, j = blk.a+blk.size, blk.b+blk.size
		if blk.size > 0 {
			ops = append(ops, opCode{op: opEqual, i1: blk.a, i2: i, j1: blk.b, j2: j})
		}
	}
	return ops
}

// matchingBlocks returns the maximal matching blocks in order, terminated
// by a zero-length sentinel at (len(a), len(b)).
func matchingBlocks(a, b []string) []matchBlock {
	b2j := make(map[string][]int, len(b))
	for j, key := range b {
		b2j[key] = append(b2j[key], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	var blocks []matchBlock

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		blk := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if blk.size == 0 {
			continue
		}
		blocks = append(blocks, blk)
		if s.alo < blk.a && s.blo < blk.b {
			queue = append(queue, span{s.alo, blk.a, s.blo, blk.b})
		}
		if blk.a+blk.size < s.ahi && blk.b+blk.size < s.bhi {
			queue = append(queue, span{blk.a + blk.size, s.ahi, blk.b + blk.size, s.bhi})
		}
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].a != blocks[j].a {
			return blocks[i].a < blocks[j].a
		}
		return blocks[i].b < blocks[j].b
	})

	// Merge adjacent blocks.
	merged := blocks[:0]
	for _, blk := range blocks {
		if n := len(merged); n > 0 &&
			merged[n-1].a+merged[n-1].size == blk.a &&
			merged[n-1].b+merged[n-1].size == blk.b {
			merged[n-1].size += blk.size
			continue
		}
		merged = append(merged, blk)
	}

	return append(merged, matchBlock{a: len(a), b: len(b)})
}

// longestMatch finds the longest block of equal elements within
// a[alo:ahi] and b[blo:bhi], preferring the earliest in a, then in b.
func longestMatch(a []string, b2j map[string][]int, alo, ahi, blo, bhi int) matchBlock {
	best := matchBlock{a: alo, b: blo}
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > best.size {
				best = matchBlock{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newJ2len
	}
	return best
}

// pairedSpan is the number of one-to-one pairings within a non-equal
// alignment block: min of the lengths consumed from each side.
func pairedSpan(op opCode) int {
	n := op.i2 - op.i1
	if m := op.j2 - op.j1; m < n {
		n = m
	}
	return n
}

// blockCost is the edit cost of a non-equal alignment block: the larger of
// the lengths consumed from each side.
func blockCost(op opCode) int {
	n := op.i2 - op.i1
	if m := op.j2 - op.j1; m > n {
		n = m
	}
	return n
}
