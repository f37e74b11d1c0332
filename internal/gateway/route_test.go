package gateway

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewPathMatcherInvalid(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty segment", "/a//b"},
		{"no leading slash", "pets"},
		{"trailing slash", "/pets/"},
		{"root only", "/"},
		{"partial braces", "/pe{ts"},
		{"tail not last", "/{proxy+}/more"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPathMatcher("GET", tt.path)
			var tplErr *InvalidPathTemplateError
			if !errors.As(err, &tplErr) {
				t.Errorf("NewPathMatcher(%q) error = %v, want InvalidPathTemplateError", tt.path, err)
			}
		})
	}
}

func TestPathMatcherMatch(t *testing.T) {
	m, err := NewPathMatcher("GET", "/pets/{id}/toys")
	if err != nil {
		t.Fatalf("NewPathMatcher: %v", err)
	}

	params, ok := m.Match("GET", "/pets/42/toys")
	if !ok {
		t.Fatal("Match missed a conforming path")
	}
	if !reflect.DeepEqual(params, map[string]string{"id": "42"}) {
		t.Errorf("params = %v", params)
	}

	if _, ok := m.Match("get", "/pets/42/toys"); !ok {
		t.Error("method comparison should be case-insensitive")
	}
	if _, ok := m.Match("POST", "/pets/42/toys"); ok {
		t.Error("Match accepted a differing method")
	}
	if _, ok := m.Match("GET", "/pets/42"); ok {
		t.Error("Match accepted a truncated path")
	}
	if _, ok := m.Match("GET", "/pets/42/toys/extra"); ok {
		t.Error("Match accepted a path with extra segments")
	}
	if _, ok := m.Match("GET", "/pets//toys"); ok {
		t.Error("Match accepted an empty parameter segment")
	}
}

func TestPathMatcherLiteral(t *testing.T) {
	m, err := NewPathMatcher("POST", "/pets")
	if err != nil {
		t.Fatalf("NewPathMatcher: %v", err)
	}
	params, ok := m.Match("POST", "/pets")
	if !ok {
		t.Fatal("Match missed the literal path")
	}
	if len(params) != 0 {
		t.Errorf("params = %v, want none", params)
	}
}

func TestPathMatcherProxyTail(t *testing.T) {
	m, err := NewPathMatcher("ANY", "/{proxy+}")
	if err != nil {
		t.Fatalf("NewPathMatcher: %v", err)
	}

	params, ok := m.Match("DELETE", "/a/b/c")
	if !ok {
		t.Fatal("Match missed the catch-all")
	}
	if params["proxy"] != "a/b/c" {
		t.Errorf("proxy = %q, want a/b/c", params["proxy"])
	}
	if _, ok := m.Match("GET", ""); ok {
		t.Error("Match accepted an empty path")
	}
}

func TestSortRoutesLiteralFirst(t *testing.T) {
	mustMatcher := func(method, path string) *PathMatcher {
		t.Helper()
		m, err := NewPathMatcher(method, path)
		if err != nil {
			t.Fatalf("NewPathMatcher(%q): %v", path, err)
		}
		return m
	}

	routes := []Route{
		{Matcher: mustMatcher("ANY", "/{proxy+}"), Resource: "/{proxy+}"},
		{Matcher: mustMatcher("GET", "/pets/{id}"), Resource: "/pets/{id}"},
		{Matcher: mustMatcher("GET", "/pets/list"), Resource: "/pets/list"},
		{Matcher: mustMatcher("POST", "/pets"), Resource: "/pets"},
	}
	sortRoutes(routes)

	var order []string
	for _, r := range routes {
		order = append(order, r.Resource)
	}
	want := []string{"/pets", "/pets/list", "/pets/{id}", "/{proxy+}"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("route order = %v, want %v", order, want)
	}
}
