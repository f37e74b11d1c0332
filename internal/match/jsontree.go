// Package match implements the nearest-match diagnostic engine: indexing of
// recorded cases, the tiered fallback reporter, and the structural diff
// algorithms that explain how a request differs from the closest cases.
package match

import (
	"sort"
	"strconv"
)

// Kind identifies a JSON value type. The ordinal order matters: collection
// kinds sort after scalar kinds, which is the boundary signatures rely on.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindInt
	KindFloat
	KindList
	KindObject
)

// IsCollection reports whether the kind is a list or object.
func (k Kind) IsCollection() bool { return k >= KindList }

// Construct returns the zero value of the kind, used to render a structural
// signature as a reconstructable JSON skeleton.
func (k Kind) Construct() any {
	switch k {
	case KindBool:
		return false
	case KindString:
		return ""
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindList:
		return []any{}
	case KindObject:
		return map[string]any{}
	default:
		return nil
	}
}

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// kindOf classifies a normalized JSON value.
func kindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case []any:
		return KindList
	case map[string]any:
		return KindObject
	default:
		return KindNull
	}
}

// canonScalar encodes a scalar value with a type prefix so values of
// different kinds never compare equal through their encodings.
func canonScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "z"
	case bool:
		if x {
			return "t"
		}
		return "f"
	case string:
		return "s" + strconv.Quote(x)
	case int64:
		return "i" + strconv.FormatInt(x, 10)
	case float64:
		return "d" + strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return "?"
	}
}

// Field is one (key, value kind) entry of an object signature.
type Field struct {
	Name string
	Kind Kind
}

// Signature is a typed description of a JSON substructure or scalar: a
// scalar is identified by its (kind, value) pair, a list by the ordered
// kinds of its elements, and an object by the set of its (key, kind) pairs.
type Signature struct {
	Kind   Kind
	Scalar any     // scalar kinds only
	Elems  []Kind  // KindList only
	Fields []Field // KindObject only, sorted by name

	key string
}

// Key returns a canonical encoding of the signature. Signatures are equal
// exactly when their keys are equal, and sorting by key orders scalar kinds
// before collection kinds.
func (s Signature) Key() string { return s.key }

// Skeleton renders the signature as JSON-compatible data built from zero
// values, letting a diagnostic show the shape a candidate expects.
func (s Signature) Skeleton() any {
	switch s.Kind {
	case KindList:
		out := make([]any, len(s.Elems))
		for i, k := range s.Elems {
			out[i] = k.Construct()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(s.Fields))
		for _, f := range s.Fields {
			out[f.Name] = f.Kind.Construct()
		}
		return out
	default:
		return s.Kind.Construct()
	}
}

func scalarSignature(v any) Signature {
	k := kindOf(v)
	return Signature{
		Kind:   k,
		Scalar: v,
		key:    strconv.Itoa(int(k)) + "|" + canonScalar(v),
	}
}

func listSignature(items []any) Signature {
	elems := make([]Kind, len(items))
	buf := make([]byte, 0, 2+2*len(items))
	buf = append(buf, strconv.Itoa(int(KindList))...)
	buf = append(buf, '|', '[')
	for i, item := range items {
		elems[i] = kindOf(item)
		buf = strconv.AppendInt(buf, int64(elems[i]), 10)
		buf = append(buf, ',')
	}
	buf = append(buf, ']')
	return Signature{Kind: KindList, Elems: elems, key: string(buf)}
}

func objectSignature(m map[string]any) Signature {
	fields := make([]Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, Field{Name: k, Kind: kindOf(v)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	buf := make([]byte, 0, 16)
	buf = append(buf, strconv.Itoa(int(KindObject))...)
	buf = append(buf, '|', '{')
	for _, f := range fields {
		buf = strconv.AppendQuote(buf, f.Name)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(f.Kind), 10)
		buf = append(buf, ',')
	}
	buf = append(buf, '}')
	return Signature{Kind: KindObject, Fields: fields, key: string(buf)}
}

func signatureOf(v any) Signature {
	switch x := v.(type) {
	case []any:
		return listSignature(x)
	case map[string]any:
		return objectSignature(x)
	default:
		return scalarSignature(x)
	}
}

// KeyPath locates a node within a JSON document: an ordered sequence of
// object keys (string) and list indices (int). The empty path is the root.
type KeyPath []any

// child returns a new path extended by one segment. The backing array is
// copied so sibling paths never alias.
func (p KeyPath) child(seg any) KeyPath {
	out := make(KeyPath, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// Key returns a canonical encoding of the path.
func (p KeyPath) Key() string {
	buf := make([]byte, 0, 8*len(p))
	for _, seg := range p {
		switch s := seg.(type) {
		case int:
			buf = append(buf, '#')
			buf = strconv.AppendInt(buf, int64(s), 10)
		case string:
			buf = append(buf, '.')
			buf = strconv.AppendQuote(buf, s)
		}
	}
	return string(buf)
}

// AsJSONData renders the path as a JSON array of keys and indices.
func (p KeyPath) AsJSONData() []any {
	out := make([]any, len(p))
	for i, seg := range p {
		if idx, ok := seg.(int); ok {
			out[i] = int64(idx)
		} else {
			out[i] = seg
		}
	}
	return out
}

// treeNode is one flattened node of a document: its signature, its raw
// value and the path that locates it.
type treeNode struct {
	sig   Signature
	value any
	path  KeyPath
}

type location struct {
	path KeyPath
	sig  Signature
}

type scalarNode struct {
	path  KeyPath
	value any
}

// treeIndex flattens a JSON document depth-first into an ordered node list
// and derives the three views the structural diff works on. All views are
// computed at construction; a treeIndex is immutable afterwards.
type treeIndex struct {
	nodes []treeNode

	// Substructure signatures in presence order (see sortSubstructs), with
	// key paths parallel to the signatures. Used for presence comparison,
	// which ignores position.
	sortedSigs     []Signature
	sortedSigPaths []KeyPath

	// Substructure (path, signature) pairs in document order, for location
	// comparison.
	locations []location

	// Scalar (path, value) pairs in document order, for value comparison.
	scalars []scalarNode

	// Raw values grouped by signature key, for reporting congruent data.
	bySig map[string][]any
}

func newTreeIndex(doc any) *treeIndex {
	t := &treeIndex{bySig: make(map[string][]any)}
	t.walk(doc, KeyPath{})

	var structs []treeNode
	for _, n := range t.nodes {
		t.bySig[n.sig.key] = append(t.bySig[n.sig.key], n.value)
		if n.sig.Kind.IsCollection() {
			structs = append(structs, n)
			t.locations = append(t.locations, location{path: n.path, sig: n.sig})
		} else {
			t.scalars = append(t.scalars, scalarNode{path: n.path, value: n.value})
		}
	}

	sortSubstructs(structs)
	t.sortedSigs = make([]Signature, len(structs))
	t.sortedSigPaths = make([]KeyPath, len(structs))
	for i, n := range structs {
		t.sortedSigs[i] = n.sig
		t.sortedSigPaths[i] = n.path
	}
	return t
}

// walk visits a node and then its children: object keys in sorted order,
// list elements in index order. This visit order is the document order all
// derived views share.
func (t *treeIndex) walk(v any, path KeyPath) {
	t.nodes = append(t.nodes, treeNode{sig: signatureOf(v), value: v, path: path})
	switch x := v.(type) {
	case []any:
		for i, item := range x {
			t.walk(item, path.child(i))
		}
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.walk(x[k], path.child(k))
		}
	}
}

// sortSubstructs arranges substructures into the order presence comparison
// aligns on: lists before objects, lists ordered by their element kinds,
// objects ordered by strict field-set inclusion. sigBefore is a partial
// order, so this is an insertion sort rather than sort.Slice: incomparable
// signatures keep their document order, which both sides of a comparison
// share whenever the same substructures are present.
func sortSubstructs(structs []treeNode) {
	for i := 1; i < len(structs); i++ {
		n := structs[i]
		j := i
		for j > 0 && sigBefore(n.sig, structs[j-1].sig) {
			structs[j] = structs[j-1]
			j--
		}
		structs[j] = n
	}
}

func sigBefore(a, b Signature) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	switch a.Kind {
	case KindList:
		return lessKinds(a.Elems, b.Elems)
	case KindObject:
		return strictFieldSubset(a.Fields, b.Fields)
	default:
		return false
	}
}

func lessKinds(a, b []Kind) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// strictFieldSubset reports whether every field of a appears in b with the
// same kind while b carries more fields. Both slices are sorted by name.
func strictFieldSubset(a, b []Field) bool {
	if len(a) >= len(b) {
		return false
	}
	i := 0
	for _, f := range b {
		if i == len(a) {
			break
		}
		if a[i] == f {
			i++
		}
	}
	return i == len(a)
}

// itemsFromSignature returns the document's raw values whose signature
// equals sig, in document order.
func (t *treeIndex) itemsFromSignature(sig Signature) []any {
	return t.bySig[sig.key]
}
