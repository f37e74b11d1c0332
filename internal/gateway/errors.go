// Package gateway adapts recorded HTTP cases into AWS API Gateway Lambda
// events, routes them through handler mappings derived from a Serverless
// project config, and verifies handler responses against the recorded
// expectations.
package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoRouteError is returned when no route matched the given method and path.
type NoRouteError struct {
	Method string
	Path   string
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no route for %s %s", e.Method, e.Path)
}

// InvalidPathTemplateError is returned for an invalid routing path template.
type InvalidPathTemplateError struct {
	PathTemplate string
	ErrorIndex   int
}

func (e *InvalidPathTemplateError) Error() string {
	return fmt.Sprintf("invalid template syntax at character index %d of %q",
		e.ErrorIndex, e.PathTemplate)
}

// UnexpectedResponseBodyError is returned when a handler produced a
// response body other than the recorded expectation.
type UnexpectedResponseBodyError struct {
	Actual   any
	Expected any
}

func (e *UnexpectedResponseBodyError) Error() string {
	return fmt.Sprintf("\n    ----- ACTUAL -----\n%s\n\n    ----- EXPECTED -----\n%s",
		formatBody(e.Actual), formatBody(e.Expected))
}

func formatBody(body any) string {
	var rendered string
	switch b := body.(type) {
	case string:
		data, _ := json.Marshal(b)
		rendered = string(data)
	case []byte:
		content := fmt.Sprintf("% 02x", b)
		if len(content) > 100 {
			content = content[:97] + "..."
		}
		rendered = fmt.Sprintf("<(binary) %s>", content)
	default:
		data, _ := json.MarshalIndent(b, "", "    ")
		rendered = string(data)
	}
	return strings.ReplaceAll("\n"+rendered, "\n", "\n    ")
}
