package match

import (
	"github.com/casewise/casewise/internal/catalog"
)

// Report is a nearest-match diagnostic. Every variant serializes to a JSON
// object with a single, fixed top-level key; a Report never contains a
// "response status" field, which is how callers distinguish it from an
// exact hit.
type Report interface {
	AsJSONData() map[string]any
}

// FieldSetsReport lists the known additional-field value sets closest to
// the request's.
type FieldSetsReport struct {
	Sets []ValueSet
}

func (r FieldSetsReport) AsJSONData() map[string]any {
	sets := make([]any, len(r.Sets))
	for i, vs := range r.Sets {
		set := make(map[string]any, len(vs))
		for _, fv := range vs {
			set[fv.Name] = fv.Value
		}
		sets[i] = set
	}
	return map[string]any{"available additional test case field value sets": sets}
}

// PathGroup pairs a recorded URL path with the cases recorded under it.
type PathGroup struct {
	Path  string
	Cases []catalog.Case
}

// PathsReport lists the recorded URL paths closest to the request's path,
// by ascending edit distance.
type PathsReport struct {
	Groups []PathGroup
}

func (r PathsReport) AsJSONData() map[string]any {
	groups := make([]any, len(r.Groups))
	for i, g := range r.Groups {
		descriptions := make([]any, 0, len(g.Cases))
		for _, c := range g.Cases {
			if _, ok := c[catalog.FieldDescription]; ok {
				descriptions = append(descriptions, c.Description())
			}
		}
		groups[i] = []any{g.Path, descriptions}
	}
	return map[string]any{"closest URL paths": groups}
}

// MethodsReport lists the HTTP methods recorded for the request's URL.
// Set semantics; methods are sorted only to keep output deterministic.
type MethodsReport struct {
	Methods []string
}

func (r MethodsReport) AsJSONData() map[string]any {
	methods := make([]any, len(r.Methods))
	for i, m := range r.Methods {
		methods[i] = m
	}
	return map[string]any{"available HTTP methods": methods}
}

// BodyDelta pairs a structural diff with the case it was computed against.
type BodyDelta struct {
	Delta Delta
	Case  catalog.Case
}

// JSONBodiesReport lists the recorded JSON request bodies closest to the
// request's.
type JSONBodiesReport struct {
	Entries []BodyDelta
}

func (r JSONBodiesReport) AsJSONData() map[string]any {
	entries := make([]any, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = map[string]any{
			"case description": e.Case.Description(),
			"diff":             deltaJSONData(e.Delta),
		}
	}
	return map[string]any{"minimal JSON request body deltas": entries}
}

func deltaJSONData(d Delta) any {
	switch {
	case len(d.Presence) > 0:
		return map[string]any{"alter substructures": structEditsJSONData(d.Presence)}
	case len(d.Location) > 0:
		return map[string]any{"rearrange substructures": structEditsJSONData(d.Location)}
	case len(d.Scalar) > 0:
		return map[string]any{"alter scalar values": scalarEditsJSONData(d.Scalar)}
	}
	return nil
}

func structEditsJSONData(edits []StructEdit) []any {
	out := make([]any, len(edits))
	for i, e := range edits {
		mod := make(map[string]any, 2)
		switch e.Op {
		case StructAlt:
			mod["alt"] = e.Path.AsJSONData()
			mod["to"] = e.Sig.Skeleton()
		case StructDel:
			mod["del"] = e.Path.AsJSONData()
		case StructAdd:
			mod["add"] = e.Sig.Skeleton()
		}
		out[i] = mod
	}
	return out
}

func scalarEditsJSONData(edits []ScalarEdit) []any {
	out := make([]any, len(edits))
	for i, e := range edits {
		mod := make(map[string]any, 2)
		switch e.Op {
		case ScalarSet:
			mod["set"] = e.Path.AsJSONData()
			mod["to"] = e.Value
		case ScalarDel:
			mod["del"] = e.Path.AsJSONData()
		case ScalarIns:
			// An inserted value has no path in the reference to report.
		}
		out[i] = mod
	}
	return out
}

// ScalarBodiesReport lists the recorded non-JSON request bodies closest to
// the request's by plain edit distance.
type ScalarBodiesReport struct {
	Cases []catalog.Case
}

func (r ScalarBodiesReport) AsJSONData() map[string]any {
	entries := make([]any, len(r.Cases))
	for i, c := range r.Cases {
		entry := map[string]any{"case description": c.Description()}
		catalog.BodyJSONData(entry, catalog.FieldRequestBody, c.RequestBody())
		entries[i] = entry
	}
	return map[string]any{"closest request bodies": entries}
}

// QueryDeltaEntry pairs a query-string diff with the case it was computed
// against.
type QueryDeltaEntry struct {
	Delta QueryDelta
	Case  catalog.Case
}

// QueryDeltasReport lists the smallest query-string deltas between the
// request and the same-path cases.
type QueryDeltasReport struct {
	Entries []QueryDeltaEntry
}

func (r QueryDeltasReport) AsJSONData() map[string]any {
	entries := make([]any, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = map[string]any{
			"case description": e.Case.Description(),
			"diff":             queryDeltaJSONData(e.Delta),
		}
	}
	return map[string]any{"minimal query string deltas": entries}
}

func queryDeltaJSONData(d QueryDelta) map[string]any {
	params := make(map[string]any, len(d.Params))
	for name, values := range d.Params {
		vs := make([]any, len(values))
		for i, v := range values {
			vs[i] = v
		}
		params[name] = vs
	}
	mods := make([]any, len(d.Mods))
	for i, m := range d.Mods {
		mod := map[string]any{"field": m.Field}
		mod[m.Op] = m.Value
		if m.Op == "chg" {
			mod["to"] = m.To
		}
		mods[i] = mod
	}
	return map[string]any{
		"params with differing value sequences": params,
		"mods":                                  mods,
	}
}
