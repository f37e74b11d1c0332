package match

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/casewise/casewise/internal/catalog"
)

// Index holds a case catalogue indexed four ways: by derived case key for
// exact hits, and by reqline, full URL and URL path for nearest-match
// reporting. An Index is immutable after construction and safe for
// concurrent lookups.
type Index struct {
	keyer *catalog.Keyer

	byKey     map[catalog.Key]catalog.Case
	byReqline map[string][]catalog.Case
	byURL     map[string][]catalog.Case

	byPath map[string][]catalog.Case
	// paths in first-occurrence order; path ranking ties break by this order
	paths []string
}

// NewIndex builds an Index over cases. Later cases win exact-key
// collisions. Fails if any case carries an unparsable URL.
func NewIndex(cases []catalog.Case, keyer *catalog.Keyer) (*Index, error) {
	ix := &Index{
		keyer:     keyer,
		byKey:     make(map[catalog.Key]catalog.Case, len(cases)),
		byReqline: make(map[string][]catalog.Case),
		byURL:     make(map[string][]catalog.Case),
		byPath:    make(map[string][]catalog.Case),
	}
	for i, c := range cases {
		path, params, err := splitURL(c)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		ix.byKey[keyer.Key(c)] = c
		ix.byReqline[reqline(c)] = append(ix.byReqline[reqline(c)], c)
		ix.byURL[urlKey(path, params)] = append(ix.byURL[urlKey(path, params)], c)
		if _, seen := ix.byPath[path]; !seen {
			ix.paths = append(ix.paths, path)
		}
		ix.byPath[path] = append(ix.byPath[path], c)
	}
	return ix, nil
}

// Len returns the number of distinct exact-match keys.
func (ix *Index) Len() int { return len(ix.byKey) }

// Exact returns the case whose derived key equals the request's, if any.
func (ix *Index) Exact(request catalog.Case) (catalog.Case, bool) {
	c, ok := ix.byKey[ix.keyer.Key(request)]
	return c, ok
}

// Keyer returns the keyer the index was built with.
func (ix *Index) Keyer() *catalog.Keyer { return ix.keyer }

// PathSummary describes the cases recorded under one URL path.
type PathSummary struct {
	Path    string   `json:"path" yaml:"path"`
	Methods []string `json:"methods" yaml:"methods"`
	Cases   int      `json:"cases" yaml:"cases"`
}

// Summarize reports per-path case counts and methods, paths in
// first-occurrence order.
func (ix *Index) Summarize() []PathSummary {
	summaries := make([]PathSummary, 0, len(ix.paths))
	for _, path := range ix.paths {
		cases := ix.byPath[path]
		summaries = append(summaries, PathSummary{
			Path:    path,
			Methods: availableMethods(cases),
			Cases:   len(cases),
		})
	}
	return summaries
}

// reqline identifies a request by lowercased method and verbatim URL.
func reqline(c catalog.Case) string {
	return c.Method() + " " + c.URL()
}

// splitURL parses a case's URL into its path and its query parameters
// sorted by name.
func splitURL(c catalog.Case) (string, []Param, error) {
	u, err := url.Parse(c.URL())
	if err != nil {
		return "", nil, fmt.Errorf("parsing url %q: %w", c.URL(), err)
	}
	return u.Path, SortParams(ParseQuery(u.RawQuery)), nil
}

// urlKey identifies a URL by path plus sorted parameters, ignoring the
// original parameter order but not value multiplicity.
func urlKey(path string, sorted []Param) string {
	var b strings.Builder
	b.WriteString(strconv.Quote(path))
	for _, p := range sorted {
		b.WriteByte('&')
		b.WriteString(strconv.Quote(p.Name))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(p.Value))
	}
	return b.String()
}
