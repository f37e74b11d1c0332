package catalog

import "sort"

// FieldValue is a single (field, value) pair from a view.
type FieldValue struct {
	Name  string
	Value any
}

// FieldView is a read-only projection of a case restricted to a key
// predicate, with an optional per-value transform. It never copies or
// mutates the underlying case.
type FieldView struct {
	src       map[string]any
	keep      func(string) bool
	transform func(any) any
}

// NewFieldView builds a view over src. A nil keep keeps every key; a nil
// transform returns values unchanged.
func NewFieldView(src map[string]any, keep func(string) bool, transform func(any) any) FieldView {
	return FieldView{src: src, keep: keep, transform: transform}
}

// Get returns the transformed value for k if present and kept.
func (v FieldView) Get(k string) (any, bool) {
	if v.keep != nil && !v.keep(k) {
		return nil, false
	}
	val, ok := v.src[k]
	if !ok {
		return nil, false
	}
	if v.transform != nil {
		val = v.transform(val)
	}
	return val, true
}

// Contains reports whether k is present and kept.
func (v FieldView) Contains(k string) bool {
	_, ok := v.Get(k)
	return ok
}

// Items returns the kept (field, transformed value) pairs sorted by field
// name. Go maps have no iteration order, so sorting is what makes views
// comparable between a stored case and an incoming request.
func (v FieldView) Items() []FieldValue {
	items := make([]FieldValue, 0, len(v.src))
	for k := range v.src {
		val, ok := v.Get(k)
		if !ok {
			continue
		}
		items = append(items, FieldValue{Name: k, Value: val})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
