package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// LoadFile reads one YAML case file. The file is either a sequence of case
// mappings or a mapping with a "cases" sequence. In-file order is preserved;
// it is observable later through tie-breaking in nearest-match ranking.
func LoadFile(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case file: %w", err)
	}
	cases, err := ParseCases(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// ParseCases parses YAML case data. JSON is a subset of YAML, so JSON case
// files parse through the same path.
func ParseCases(data []byte) ([]Case, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing cases: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	seq, ok := doc.([]any)
	if !ok {
		m, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("case file must be a sequence or a mapping with a cases key, got %T", doc)
		}
		seq, ok = m["cases"].([]any)
		if !ok {
			return nil, fmt.Errorf("case file mapping has no cases sequence")
		}
	}

	cases := make([]Case, 0, len(seq))
	for i, entry := range seq {
		raw, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("case %d: expected a mapping, got %T", i, entry)
		}
		c, err := NormalizeCase(raw)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		if c.URL() == "" {
			return nil, fmt.Errorf("case %d: missing url", i)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// ParseRequest parses a single request document (JSON or YAML mapping)
// and normalizes it like a case.
func ParseRequest(data []byte) (Case, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty request document")
	}
	c, err := NormalizeCase(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing request: %w", err)
	}
	if c.URL() == "" {
		return nil, fmt.Errorf("request has no url")
	}
	return c, nil
}

// GlobPaths expands case file glob patterns (doublestar ** supported)
// relative to baseDir. Matched paths are deduplicated and sorted so
// catalogue order is stable across runs.
func GlobPaths(baseDir string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad case file pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadGlobs loads every case file matched by the given glob patterns.
func LoadGlobs(baseDir string, patterns []string) ([]Case, error) {
	paths, err := GlobPaths(baseDir, patterns)
	if err != nil {
		return nil, err
	}

	var all []Case
	for _, path := range paths {
		cases, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, cases...)
	}
	return all, nil
}
