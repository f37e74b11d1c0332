package match

import (
	"sort"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/casewise/casewise/internal/catalog"
)

// DefaultTimeout is the soft budget for one nearest-match report.
const DefaultTimeout = 300 * time.Millisecond

// reportSize caps how many nearest candidates each report carries.
const reportSize = 5

// BestMatches finds the nearest imperfect matches for a request that has
// no exact hit, walking the index tiers in priority order: same reqline,
// same URL, same path, then closest path by edit distance.
//
// The timeout is a soft budget enforced by polling a wall clock between
// candidate comparisons. It stops new candidates from entering the ranking
// but never interrupts a comparison in flight, so a single expensive
// document can still overrun it; callers needing a hard cutoff must
// impose one externally. A non-positive timeout disables the budget.
func (ix *Index) BestMatches(request catalog.Case, timeout time.Duration) (Report, error) {
	r := reporter{index: ix, request: request}
	if timeout > 0 {
		r.deadline = time.Now().Add(timeout)
	}
	return r.report()
}

type reporter struct {
	index    *Index
	request  catalog.Case
	deadline time.Time
}

func (r *reporter) expired() bool {
	return !r.deadline.IsZero() && !time.Now().Before(r.deadline)
}

func (r *reporter) report() (Report, error) {
	ix := r.index

	if cases, ok := ix.byReqline[reqline(r.request)]; ok {
		if report, mismatch := r.fieldSetsMismatch(cases); mismatch {
			return report, nil
		}
		return r.closestRequestBodies(cases), nil
	}

	path, params, err := splitURL(r.request)
	if err != nil {
		return nil, err
	}

	if cases, ok := ix.byURL[urlKey(path, params)]; ok {
		return MethodsReport{Methods: availableMethods(cases)}, nil
	}

	if cases, ok := ix.byPath[path]; ok {
		return r.closestQueryParams(params, cases), nil
	}

	return r.closestPaths(path), nil
}

// fieldSetsMismatch checks whether the request's additional correlation
// fields form a known value set for its reqline. If not, it reports the
// closest known sets.
func (r *reporter) fieldSetsMismatch(cases []catalog.Case) (Report, bool) {
	additional := r.index.keyer.AdditionalKeys()
	known := knownValueSets(cases, additional)

	requested := valueSetOf(r.request, additional)
	for _, vs := range known {
		if valueSetEqual(vs, requested) {
			return nil, false
		}
	}

	refKeys := valueSetKeys(requested)
	var q topK[ValueSet]
	for _, vs := range known {
		q.Add([]int{fieldSetCost(refKeys, vs)}, vs)
	}
	return FieldSetsReport{Sets: q.Best(reportSize)}, true
}

// closestRequestBodies reports the same-reqline cases whose request bodies
// are nearest the request's, restricted to bodies of the same kind.
// JSON-compatible bodies use the tiered structural diff; plain string and
// byte bodies use edit distance over the raw content.
func (r *reporter) closestRequestBodies(cases []catalog.Case) Report {
	body := r.request.RequestBody()
	kind := bodyKind(body)

	available := make([]catalog.Case, 0, len(cases))
	for _, c := range cases {
		if bodyKind(c.RequestBody()) == kind {
			available = append(available, c)
		}
	}

	if kind == bodyString || kind == bodyBytes {
		ref := rawBody(body)
		var q topK[catalog.Case]
		for _, c := range available {
			q.Add([]int{levenshtein.ComputeDistance(ref, rawBody(c.RequestBody()))}, c)
		}
		return ScalarBodiesReport{Cases: q.Best(reportSize)}
	}

	jcomp := NewJSONComparer(body)
	var q topK[BodyDelta]
	for _, c := range available {
		if r.expired() {
			break
		}
		delta := jcomp.Diff(c.RequestBody())
		dist := delta.EditDistance()
		q.Add(dist[:], BodyDelta{Delta: delta, Case: c})
	}
	return JSONBodiesReport{Entries: q.Best(reportSize)}
}

func availableMethods(cases []catalog.Case) []string {
	seen := make(map[string]bool, len(cases))
	var methods []string
	for _, c := range cases {
		if m := c.Method(); !seen[m] {
			seen[m] = true
			methods = append(methods, m)
		}
	}
	sort.Strings(methods)
	return methods
}

// closestQueryParams reports the smallest query-string deltas between the
// request and each case recorded under the same path.
func (r *reporter) closestQueryParams(params []Param, cases []catalog.Case) Report {
	qscomp := NewQStringComparer(params)
	var q topK[QueryDeltaEntry]
	for _, c := range cases {
		if r.expired() {
			break
		}
		_, caseParams, err := splitURL(c)
		if err != nil {
			continue
		}
		delta := qscomp.Diff(caseParams)
		q.Add([]int{delta.Edits}, QueryDeltaEntry{Delta: delta, Case: c})
	}
	return QueryDeltasReport{Entries: q.Best(reportSize)}
}

// closestPaths ranks every recorded path by edit distance from the
// request's path. An empty catalogue yields an empty report.
func (r *reporter) closestPaths(path string) Report {
	var q topK[string]
	for _, p := range r.index.paths {
		q.Add([]int{levenshtein.ComputeDistance(p, path)}, p)
	}
	best := q.Best(reportSize)
	groups := make([]PathGroup, len(best))
	for i, p := range best {
		groups[i] = PathGroup{Path: p, Cases: r.index.byPath[p]}
	}
	return PathsReport{Groups: groups}
}

type bodyClass int

const (
	bodyAbsent bodyClass = iota
	bodyString
	bodyBytes
	bodyBool
	bodyInt
	bodyFloat
	bodyList
	bodyObject
)

// bodyKind classifies a normalized request body; bodies only compare
// against recorded bodies of the same class.
func bodyKind(v any) bodyClass {
	switch v.(type) {
	case nil:
		return bodyAbsent
	case string:
		return bodyString
	case []byte:
		return bodyBytes
	case bool:
		return bodyBool
	case int64:
		return bodyInt
	case float64:
		return bodyFloat
	case []any:
		return bodyList
	default:
		return bodyObject
	}
}

func rawBody(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}
