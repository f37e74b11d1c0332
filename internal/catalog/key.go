package catalog

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Key is a derived, hashable identity for a case or request, computed from
// the matching fields only. Two inputs with identical selected field values
// produce equal keys.
type Key string

// Keyer derives Keys. The same Keyer must be applied to stored cases and to
// incoming requests, otherwise lookups silently miss.
type Keyer struct {
	additional map[string]struct{}
}

// NewKeyer returns a Keyer selecting method, url and request body plus the
// given additional correlation field names.
func NewKeyer(additionalKeys []string) *Keyer {
	k := &Keyer{additional: make(map[string]struct{}, len(additionalKeys))}
	for _, name := range additionalKeys {
		k.additional[name] = struct{}{}
	}
	return k
}

// AdditionalKeys returns the configured additional correlation field names,
// excluding the always-selected ones, sorted.
func (k *Keyer) AdditionalKeys() []string {
	names := make([]string, 0, len(k.additional))
	for name := range k.additional {
		switch name {
		case FieldMethod, FieldURL, FieldRequestBody:
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (k *Keyer) selects(name string) bool {
	switch name {
	case FieldMethod, FieldURL, FieldRequestBody:
		return true
	}
	_, ok := k.additional[name]
	return ok
}

// Key computes the case key for c. Byte-sequence values are tagged so they
// can never collide with equal-looking strings, and the method value is
// lowercased (methods match case-insensitively).
func (k *Keyer) Key(c Case) Key {
	view := NewFieldView(c, k.selects, keyLens)
	h := sha256.New()
	var buf []byte
	for _, item := range view.Items() {
		buf = buf[:0]
		buf = appendCanonical(buf, item.Name)
		buf = append(buf, '=')
		if item.Name == FieldMethod {
			if s, ok := item.Value.(string); ok {
				item.Value = strings.ToLower(s)
			}
		}
		buf = appendCanonical(buf, item.Value)
		buf = append(buf, ';')
		h.Write(buf)
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// Canonical returns the deterministic encoding of a normalized value, the
// same encoding the Keyer hashes. Useful wherever values must be compared
// or aligned as opaque tokens.
func Canonical(v any) string {
	return string(appendCanonical(nil, v))
}

// keyLens tags byte sequences distinctly from strings.
func keyLens(v any) any {
	if b, ok := v.([]byte); ok {
		return []any{"binary", base64.StdEncoding.EncodeToString(b)}
	}
	return v
}

// appendCanonical appends a deterministic, type-prefixed encoding of a
// normalized value. Object keys are emitted in sorted order.
func appendCanonical(dst []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(dst, 'z')
	case bool:
		if x {
			return append(dst, 't')
		}
		return append(dst, 'f')
	case string:
		dst = append(dst, 's')
		return strconv.AppendQuote(dst, x)
	case int64:
		dst = append(dst, 'i')
		return strconv.AppendInt(dst, x, 10)
	case float64:
		dst = append(dst, 'd')
		return strconv.AppendFloat(dst, x, 'g', -1, 64)
	case []byte:
		dst = append(dst, 'b')
		dst = append(dst, base64.StdEncoding.EncodeToString(x)...)
		return dst
	case []any:
		dst = append(dst, '[')
		for _, item := range x {
			dst = appendCanonical(dst, item)
			dst = append(dst, ',')
		}
		return append(dst, ']')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dst = append(dst, '{')
		for _, k := range keys {
			dst = strconv.AppendQuote(dst, k)
			dst = append(dst, ':')
			dst = appendCanonical(dst, x[k])
			dst = append(dst, ',')
		}
		return append(dst, '}')
	default:
		// Normalized values never reach here; encode the type name so a
		// stray value still hashes deterministically.
		dst = append(dst, '?')
		return append(dst, fmt.Sprintf("%T", v)...)
	}
}
