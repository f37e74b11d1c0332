package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestParseCasesSequence(t *testing.T) {
	cases, err := ParseCases([]byte(`
- method: post
  url: /pets
  request body:
    name: Fluffy
  response status: 201
- url: /pets
`))
	if err != nil {
		t.Fatalf("ParseCases: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("len(cases) = %d, want 2", len(cases))
	}
	if cases[0].Method() != "post" || cases[0].URL() != "/pets" {
		t.Errorf("case 0 = %#v", cases[0])
	}
	if cases[0][FieldResponseStatus] != int64(201) {
		t.Errorf("response status = %#v, want int64(201)", cases[0][FieldResponseStatus])
	}
	if cases[1].Method() != "get" {
		t.Errorf("default method = %q, want get", cases[1].Method())
	}
}

func TestParseCasesMapping(t *testing.T) {
	cases, err := ParseCases([]byte(`
cases:
  - url: /a
  - url: /b
`))
	if err != nil {
		t.Fatalf("ParseCases: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("len(cases) = %d, want 2", len(cases))
	}
}

func TestParseCasesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"scalar document", `just a string`},
		{"mapping without cases", `other: []`},
		{"non-mapping entry", "- url: /a\n- 7"},
		{"missing url", "- method: get"},
		{"invalid yaml", ": : :"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCases([]byte(tt.data)); err == nil {
				t.Errorf("ParseCases(%q) succeeded, want error", tt.data)
			}
		})
	}

	t.Run("empty document", func(t *testing.T) {
		cases, err := ParseCases(nil)
		if err != nil || cases != nil {
			t.Errorf("ParseCases(nil) = %v, %v, want nil, nil", cases, err)
		}
	})
}

func TestParseRequest(t *testing.T) {
	c, err := ParseRequest([]byte(`{"method": "GET", "url": "/pets?sort=name"}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if c.Method() != "get" || c.URL() != "/pets?sort=name" {
		t.Errorf("request = %#v", c)
	}

	if _, err := ParseRequest([]byte("")); err == nil {
		t.Error("ParseRequest accepted an empty document")
	}
	if _, err := ParseRequest([]byte(`{"method": "get"}`)); err == nil {
		t.Error("ParseRequest accepted a request without a url")
	}
}

func TestGlobPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cases/pets.yaml", "- url: /pets\n")
	writeFile(t, dir, "cases/nested/food.yaml", "- url: /food\n")
	writeFile(t, dir, "cases/readme.txt", "not a case file\n")

	paths, err := GlobPaths(dir, []string{"cases/**/*.yaml", "cases/*.yaml"})
	if err != nil {
		t.Fatalf("GlobPaths: %v", err)
	}
	want := []string{
		filepath.Join(dir, "cases/nested/food.yaml"),
		filepath.Join(dir, "cases/pets.yaml"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("GlobPaths = %v, want %v", paths, want)
	}
}

func TestLoadGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cases/a.yaml", "- url: /a\n- url: /a2\n")
	writeFile(t, dir, "cases/b.yaml", "- url: /b\n")

	cases, err := LoadGlobs(dir, []string{"cases/**/*.yaml"})
	if err != nil {
		t.Fatalf("LoadGlobs: %v", err)
	}
	var urls []string
	for _, c := range cases {
		urls = append(urls, c.URL())
	}
	if !reflect.DeepEqual(urls, []string{"/a", "/a2", "/b"}) {
		t.Errorf("urls = %v", urls)
	}
}

func TestLoadFileError(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile succeeded on a missing file")
	}
}
