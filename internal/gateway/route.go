package gateway

import (
	"sort"
	"strings"
)

// pathSegment is one segment of a route template: either a literal or a
// named parameter. A parameter ending in '+' captures the rest of the path
// and is only legal as the final segment.
type pathSegment struct {
	value string
	param bool
}

func (s pathSegment) varTail() bool {
	return s.param && strings.HasSuffix(s.value, "+")
}

// PathMatcher matches a URL path against an OpenAPI-style path template
// and extracts any template parameters. Template parameters only match a
// full segment of the path.
type PathMatcher struct {
	Method   string
	Path     string
	segments []pathSegment
}

// NewPathMatcher compiles a route template. Method "*" or "ANY" matches
// every HTTP method.
func NewPathMatcher(routeMethod, routePath string) (*PathMatcher, error) {
	m := &PathMatcher{Method: routeMethod, Path: routePath}

	pos := 0
	for pos < len(routePath) {
		if routePath[pos] != '/' || pos+1 >= len(routePath) {
			return nil, &InvalidPathTemplateError{PathTemplate: routePath, ErrorIndex: pos}
		}
		rest := routePath[pos+1:]
		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		seg := rest[:end]
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2:
			param := pathSegment{value: seg[1 : len(seg)-1], param: true}
			if param.varTail() && pos+1+end < len(routePath) {
				return nil, &InvalidPathTemplateError{PathTemplate: routePath, ErrorIndex: pos + 1 + end}
			}
			m.segments = append(m.segments, param)
		case seg == "" || strings.ContainsAny(seg, "{}"):
			return nil, &InvalidPathTemplateError{PathTemplate: routePath, ErrorIndex: pos + 1}
		default:
			m.segments = append(m.segments, pathSegment{value: seg})
		}
		pos += 1 + end
	}
	return m, nil
}

// Match returns the extracted path parameters, or ok=false for no match.
// A match can capture zero parameters, so the boolean is the only
// reliable signal.
func (m *PathMatcher) Match(requestMethod, requestPath string) (map[string]string, bool) {
	if m.Method != "*" && m.Method != "ANY" && !strings.EqualFold(requestMethod, m.Method) {
		return nil, false
	}

	captured := map[string]string{}
	pos := 0
	for _, seg := range m.segments {
		if seg.varTail() {
			if pos >= len(requestPath) {
				return nil, false
			}
			captured[strings.TrimSuffix(seg.value, "+")] = requestPath[pos+1:]
			pos = len(requestPath)
			continue
		}

		if pos >= len(requestPath) || requestPath[pos] != '/' {
			return nil, false
		}
		rest := requestPath[pos+1:]
		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		value := rest[:end]
		if value == "" {
			return nil, false
		}
		if seg.param {
			captured[seg.value] = value
		} else if value != seg.value {
			return nil, false
		}
		pos += 1 + end
	}

	if pos < len(requestPath) {
		return nil, false
	}
	return captured, true
}

// Route binds a compiled matcher to a handler.
type Route struct {
	Matcher *PathMatcher
	Handler HTTPHandler

	// Resource is the template the route was mapped from.
	Resource string
}

// sortRoutes orders routes so literal segments take precedence over
// parameters at each position.
func sortRoutes(routes []Route) {
	key := func(r Route) []string {
		segs := r.Matcher.segments
		parts := make([]string, len(segs))
		for i, seg := range segs {
			if seg.param {
				parts[i] = "1"
			} else {
				parts[i] = "0" + seg.value
			}
		}
		return parts
	}
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := key(routes[i]), key(routes[j])
		for n := 0; n < len(a) && n < len(b); n++ {
			if a[n] != b[n] {
				return a[n] < b[n]
			}
		}
		return len(a) < len(b)
	})
}
