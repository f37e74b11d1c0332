package match

import (
	"github.com/casewise/casewise/internal/catalog"
)

// ValueSet is one case's additional correlation fields as (field, value)
// pairs sorted by field name.
type ValueSet []catalog.FieldValue

func valueSetKeys(vs ValueSet) []string {
	keys := make([]string, len(vs))
	for i, fv := range vs {
		keys[i] = catalog.Canonical(fv.Name) + "=" + catalog.Canonical(fv.Value)
	}
	return keys
}

func valueSetEqual(a, b ValueSet) bool {
	if len(a) != len(b) {
		return false
	}
	ak, bk := valueSetKeys(a), valueSetKeys(b)
	for i := range ak {
		if ak[i] != bk[i] {
			return false
		}
	}
	return true
}

// fieldSetCost is the alignment cost between the request's value set and a
// known one: the sum over non-equal alignment blocks of the larger side's
// consumed length. Heuristic, not a metric; rankings depend on its exact
// tie-breaks so it is kept as is.
func fieldSetCost(refKeys []string, candidate ValueSet) int {
	cost := 0
	for _, op := range alignKeys(refKeys, valueSetKeys(candidate)) {
		if op.op != opEqual {
			cost += blockCost(op)
		}
	}
	return cost
}

// valueSetOf projects the additional correlation fields out of a case (or
// request) as a sorted value set.
func valueSetOf(c catalog.Case, additional []string) ValueSet {
	keep := make(map[string]struct{}, len(additional))
	for _, name := range additional {
		keep[name] = struct{}{}
	}
	view := catalog.NewFieldView(c, func(k string) bool {
		_, ok := keep[k]
		return ok
	}, nil)
	return ValueSet(view.Items())
}

// knownValueSets collects the distinct value sets across cases, in first
// occurrence order.
func knownValueSets(cases []catalog.Case, additional []string) []ValueSet {
	var sets []ValueSet
	for _, c := range cases {
		vs := valueSetOf(c, additional)
		dup := false
		for _, known := range sets {
			if valueSetEqual(known, vs) {
				dup = true
				break
			}
		}
		if !dup {
			sets = append(sets, vs)
		}
	}
	return sets
}
