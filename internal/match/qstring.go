package match

import (
	"net/url"
	"sort"
	"strings"
)

// Param is one query-string parameter occurrence.
type Param struct {
	Name  string
	Value string
}

// ParseQuery splits a raw query string into its parameter occurrences in
// document order. Pairs without '=' and pairs with an empty value are
// dropped, matching the lenient parsing applied when cases are recorded.
// An invalid percent escape keeps that text verbatim, so such parameters
// still take part in URL identity and query diffs.
func ParseQuery(rawQuery string) []Param {
	var params []Param
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		name := unescapeLenient(pair[:eq])
		value := unescapeLenient(pair[eq+1:])
		if value == "" {
			continue
		}
		params = append(params, Param{Name: name, Value: value})
	}
	return params
}

func unescapeLenient(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}

// SortParams orders parameters by name, keeping the original relative
// order of equal names. URL identity ignores parameter ordering but not
// value multiplicity, so the sort must be stable.
func SortParams(params []Param) []Param {
	sorted := make([]Param, len(params))
	copy(sorted, params)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

// QueryMod is one edit to a query parameter: exactly one of Chg, Del or
// Add applies. Chg carries the current value with To as the replacement.
type QueryMod struct {
	Field string
	Op    string // "chg", "del" or "add"
	Value string
	To    string // "chg" only
}

// QueryDelta is the difference between a reference parameter sequence and
// a candidate's. Edits is the ranking cost. Params maps every parameter
// name touched by an edit to the candidate's values for that name. Mods
// lists the individual edits in alignment order.
type QueryDelta struct {
	Edits  int
	Params map[string][]string
	Mods   []QueryMod
}

// QStringComparer diffs one ordered query-parameter sequence against
// several candidates.
type QStringComparer struct {
	ref     []Param
	refKeys []string
}

// NewQStringComparer builds a comparer for the given reference sequence.
func NewQStringComparer(params []Param) *QStringComparer {
	return &QStringComparer{ref: params, refKeys: paramKeys(params)}
}

func paramKeys(params []Param) []string {
	keys := make([]string, len(params))
	for i, p := range params {
		keys[i] = p.Name + "=" + p.Value
	}
	return keys
}

// Diff aligns the reference sequence against the candidate's and collects
// the touched parameter names, the candidate's values for those names and
// the ordered edit list. Within a replacement block, pairs with the same
// name become a value change; pairs with differing names become a
// deletion plus an addition.
func (c *QStringComparer) Diff(candidate []Param) QueryDelta {
	ops := alignKeys(c.refKeys, paramKeys(candidate))

	touched := make(map[string]bool)
	edits := 0
	var mods []QueryMod
	for _, op := range ops {
		if op.op == opEqual {
			continue
		}
		for i := op.i1; i < op.i2; i++ {
			touched[c.ref[i].Name] = true
		}
		for j := op.j1; j < op.j2; j++ {
			touched[candidate[j].Name] = true
		}
		edits += blockCost(op)

		paired := pairedSpan(op)
		for n := 0; n < paired; n++ {
			cur, targ := c.ref[op.i1+n], candidate[op.j1+n]
			if cur.Name == targ.Name {
				mods = append(mods, QueryMod{Field: cur.Name, Op: "chg", Value: cur.Value, To: targ.Value})
			} else {
				mods = append(mods, QueryMod{Field: cur.Name, Op: "del", Value: cur.Value})
				mods = append(mods, QueryMod{Field: targ.Name, Op: "add", Value: targ.Value})
			}
		}
		for i := op.i1 + paired; i < op.i2; i++ {
			mods = append(mods, QueryMod{Field: c.ref[i].Name, Op: "del", Value: c.ref[i].Value})
		}
		for j := op.j1 + paired; j < op.j2; j++ {
			mods = append(mods, QueryMod{Field: candidate[j].Name, Op: "add", Value: candidate[j].Value})
		}
	}

	var values map[string][]string
	if len(touched) > 0 {
		values = make(map[string][]string, len(touched))
		for _, p := range candidate {
			if touched[p.Name] {
				values[p.Name] = append(values[p.Name], p.Value)
			}
		}
	}
	return QueryDelta{Edits: edits, Params: values, Mods: mods}
}
