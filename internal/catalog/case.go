// Package catalog defines the recorded test case data model and loading.
//
// A case is a recorded request/response example used as ground truth for
// contract tests. Cases keep their original key/value shape: beyond the
// well-known fields (method, url, request body, response body, response
// status, description) a case may carry arbitrary additional correlation
// fields, so the natural representation is a map rather than a struct.
package catalog

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Well-known case field names.
const (
	FieldMethod         = "method"
	FieldURL            = "url"
	FieldRequestBody    = "request body"
	FieldResponseBody   = "response body"
	FieldResponseStatus = "response status"
	FieldDescription    = "description"

	// FieldBase64Flag marks a string request/response body as
	// base64-encoded binary data (the API Gateway wire convention).
	FieldBase64Flag = "isBase64Encoded"
)

// Case is a single recorded request/response example. Values are
// normalized: scalars are nil, bool, string, int64, float64 or []byte;
// composites are map[string]any and []any.
type Case map[string]any

// Method returns the case's HTTP method, lowercased, defaulting to "get".
func (c Case) Method() string {
	if m, ok := c[FieldMethod].(string); ok && m != "" {
		return strings.ToLower(m)
	}
	return "get"
}

// URL returns the case's url field (path plus optional query string).
func (c Case) URL() string {
	u, _ := c[FieldURL].(string)
	return u
}

// RequestBody returns the recorded request body, or nil when absent.
func (c Case) RequestBody() any { return c[FieldRequestBody] }

// Description returns the case description, or nil when absent.
func (c Case) Description() any { return c[FieldDescription] }

// Clone returns a shallow copy of the case.
func (c Case) Clone() Case {
	out := make(Case, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Normalize converts an arbitrary decoded JSON/YAML value into canonical
// form: map[string]any, []any, string, []byte, bool, int64, float64 or nil.
// Integral numbers always come out as int64 and non-integral as float64, so
// values loaded from YAML case files and values parsed from exchange JSON
// compare equal when they mean the same thing.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, int64, float64, []byte:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return f, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		// yaml.v2-style decoding; keys must be strings for JSON data.
		out := make(map[string]any, len(x))
		for k, item := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string mapping key %v", k)
			}
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// NormalizeCase normalizes every field of a raw case mapping and applies
// the isBase64Encoded convention: when the flag is true, string request and
// response bodies are decoded into byte sequences and the flag is removed.
func NormalizeCase(raw map[string]any) (Case, error) {
	n, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	c := Case(n.(map[string]any))

	if flag, ok := c[FieldBase64Flag].(bool); ok {
		if flag {
			for _, field := range []string{FieldRequestBody, FieldResponseBody} {
				s, ok := c[field].(string)
				if !ok {
					continue
				}
				data, err := base64.StdEncoding.DecodeString(s)
				if err != nil {
					return nil, fmt.Errorf("decoding base64 %s: %w", field, err)
				}
				c[field] = data
			}
		}
		delete(c, FieldBase64Flag)
	}

	return c, nil
}

// BodyJSONData renders a request/response body as JSON-compatible data.
// Byte sequences become a base64 string plus the isBase64Encoded flag,
// written into dst under bodyField; anything else is written verbatim.
func BodyJSONData(dst map[string]any, bodyField string, body any) {
	if b, ok := body.([]byte); ok {
		dst[bodyField] = base64.StdEncoding.EncodeToString(b)
		dst[FieldBase64Flag] = true
		return
	}
	dst[bodyField] = body
}

// AsJSONData renders the case as JSON-compatible data, re-encoding byte
// bodies under the isBase64Encoded convention NormalizeCase decodes.
func (c Case) AsJSONData() map[string]any {
	out := make(map[string]any, len(c)+1)
	for k, v := range c {
		switch k {
		case FieldRequestBody, FieldResponseBody:
			BodyJSONData(out, k, v)
		default:
			out[k] = v
		}
	}
	return out
}
