package match

// StructOp is the kind of a structural edit.
type StructOp byte

const (
	// StructAlt pairs a reference substructure with a differing candidate
	// signature at the aligned position.
	StructAlt StructOp = iota
	// StructDel removes the reference substructure at Path.
	StructDel
	// StructAdd introduces a candidate substructure with signature Sig.
	StructAdd
)

// StructEdit is one presence- or location-tier edit. Alt carries Path (in
// the reference) and Sig (from the candidate); Del carries only Path; Add
// carries only Sig. Alt and Add edits also carry the candidate's actual
// values congruent with Sig, so a diagnostic can reconstruct one.
type StructEdit struct {
	Op        StructOp
	Path      KeyPath
	Sig       Signature
	Congruent []any
}

// ScalarOp is the kind of a scalar-tier edit.
type ScalarOp byte

const (
	// ScalarSet changes the value at Path to Value.
	ScalarSet ScalarOp = iota
	// ScalarDel removes the value at Path.
	ScalarDel
	// ScalarIns inserts Value.
	ScalarIns
)

// ScalarEdit is one scalar-tier edit.
type ScalarEdit struct {
	Op    ScalarOp
	Path  KeyPath
	Value any
}

// Delta is the tiered difference between two JSON documents. At most one
// of the three tiers is non-empty: presence changes preempt location
// changes, which preempt scalar changes. An all-empty Delta means the
// documents are structurally, positionally and scalarly identical.
type Delta struct {
	Presence []StructEdit
	Location []StructEdit
	Scalar   []ScalarEdit
}

// EditDistance returns the comparable distance of the delta: the per-tier
// edit counts, compared lexicographically. By construction at most one
// component is non-zero, so scalar-only differences rank closest, then
// relocations, then presence changes.
func (d Delta) EditDistance() [3]int {
	return [3]int{len(d.Presence), len(d.Location), len(d.Scalar)}
}

// Empty reports whether all three tiers are empty.
func (d Delta) Empty() bool {
	return len(d.Presence) == 0 && len(d.Location) == 0 && len(d.Scalar) == 0
}

// JSONComparer diffs one reference JSON document against several candidate
// documents. The reference is flattened once at construction.
type JSONComparer struct {
	ref *treeIndex
}

// NewJSONComparer builds a comparer for the given reference document.
func NewJSONComparer(ref any) *JSONComparer {
	return &JSONComparer{ref: newTreeIndex(ref)}
}

// Diff compares the reference against a candidate document in three
// strictly ordered tiers, each computed only when the previous one found
// no differences:
//
//  1. presence: are the same substructures present anywhere,
//  2. location: are the matching substructures in the same places,
//  3. scalars: does each scalar location hold the expected value.
func (c *JSONComparer) Diff(candidate any) Delta {
	cand := newTreeIndex(candidate)

	if edits := c.presenceEdits(cand); len(edits) > 0 {
		return Delta{Presence: edits}
	}
	if edits := c.locationEdits(cand); len(edits) > 0 {
		return Delta{Location: edits}
	}
	return Delta{Scalar: c.scalarEdits(cand)}
}

func (c *JSONComparer) presenceEdits(cand *treeIndex) []StructEdit {
	refKeys := make([]string, len(c.ref.sortedSigs))
	for i, s := range c.ref.sortedSigs {
		refKeys[i] = s.key
	}
	candKeys := make([]string, len(cand.sortedSigs))
	for i, s := range cand.sortedSigs {
		candKeys[i] = s.key
	}

	var edits []StructEdit
	for _, op := range alignKeys(refKeys, candKeys) {
		if op.op == opEqual {
			continue
		}
		paired := pairedSpan(op)
		for n := 0; n < paired; n++ {
			sig := cand.sortedSigs[op.j1+n]
			edits = append(edits, StructEdit{
				Op:        StructAlt,
				Path:      c.ref.sortedSigPaths[op.i1+n],
				Sig:       sig,
				Congruent: cand.itemsFromSignature(sig),
			})
		}
		for i := op.i1 + paired; i < op.i2; i++ {
			edits = append(edits, StructEdit{Op: StructDel, Path: c.ref.sortedSigPaths[i]})
		}
		for j := op.j1 + paired; j < op.j2; j++ {
			sig := cand.sortedSigs[j]
			edits = append(edits, StructEdit{
				Op:        StructAdd,
				Sig:       sig,
				Congruent: cand.itemsFromSignature(sig),
			})
		}
	}
	return edits
}

func (c *JSONComparer) locationEdits(cand *treeIndex) []StructEdit {
	refKeys := make([]string, len(c.ref.locations))
	for i, loc := range c.ref.locations {
		refKeys[i] = loc.path.Key() + ">" + loc.sig.key
	}
	candKeys := make([]string, len(cand.locations))
	for i, loc := range cand.locations {
		candKeys[i] = loc.path.Key() + ">" + loc.sig.key
	}

	var edits []StructEdit
	for _, op := range alignKeys(refKeys, candKeys) {
		if op.op == opEqual {
			continue
		}
		paired := pairedSpan(op)
		for n := 0; n < paired; n++ {
			sig := cand.locations[op.j1+n].sig
			edits = append(edits, StructEdit{
				Op:        StructAlt,
				Path:      c.ref.locations[op.i1+n].path,
				Sig:       sig,
				Congruent: cand.itemsFromSignature(sig),
			})
		}
		for i := op.i1 + paired; i < op.i2; i++ {
			edits = append(edits, StructEdit{Op: StructDel, Path: c.ref.locations[i].path})
		}
		for j := op.j1 + paired; j < op.j2; j++ {
			sig := cand.locations[j].sig
			edits = append(edits, StructEdit{
				Op:        StructAdd,
				Sig:       sig,
				Congruent: cand.itemsFromSignature(sig),
			})
		}
	}
	return edits
}

func (c *JSONComparer) scalarEdits(cand *treeIndex) []ScalarEdit {
	refKeys := make([]string, len(c.ref.scalars))
	for i, s := range c.ref.scalars {
		refKeys[i] = s.path.Key() + "=" + canonScalar(s.value)
	}
	candKeys := make([]string, len(cand.scalars))
	for i, s := range cand.scalars {
		candKeys[i] = s.path.Key() + "=" + canonScalar(s.value)
	}

	var edits []ScalarEdit
	for _, op := range alignKeys(refKeys, candKeys) {
		if op.op == opEqual {
			continue
		}
		paired := pairedSpan(op)
		for n := 0; n < paired; n++ {
			edits = append(edits, ScalarEdit{
				Op:    ScalarSet,
				Path:  c.ref.scalars[op.i1+n].path,
				Value: cand.scalars[op.j1+n].value,
			})
		}
		for i := op.i1 + paired; i < op.i2; i++ {
			edits = append(edits, ScalarEdit{Op: ScalarDel, Path: c.ref.scalars[i].path})
		}
		for j := op.j1 + paired; j < op.j2; j++ {
			edits = append(edits, ScalarEdit{Op: ScalarIns, Value: cand.scalars[j].value})
		}
	}
	return edits
}
