// Package exchange implements the JSON-in/JSON-out request/response
// protocol over a case index: an exact hit returns the recorded case with
// a guaranteed "response status", a miss returns a nearest-match report
// that never carries one.
package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/casewise/casewise/internal/catalog"
	"github.com/casewise/casewise/internal/match"
)

// Engine answers exchange requests against one immutable index. Safe for
// concurrent use.
type Engine struct {
	index   *match.Index
	timeout time.Duration
}

// NewEngine wraps an index. A non-positive timeout falls back to the
// default nearest-match budget.
func NewEngine(index *match.Index, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = match.DefaultTimeout
	}
	return &Engine{index: index, timeout: timeout}
}

// Handle resolves one already-normalized request. The request must carry
// a url; an exchange without one fails rather than degrading into a
// closest-paths report for the empty path.
func (e *Engine) Handle(request catalog.Case) (map[string]any, error) {
	if _, ok := request[catalog.FieldURL].(string); !ok {
		return nil, fmt.Errorf("exchange request: %q is required", catalog.FieldURL)
	}
	if c, ok := e.index.Exact(request); ok {
		// Shallow render so the default status never mutates the case.
		response := c.AsJSONData()
		if _, ok := response[catalog.FieldResponseStatus]; !ok {
			response[catalog.FieldResponseStatus] = int64(200)
		}
		return response, nil
	}

	report, err := e.index.BestMatches(request, e.timeout)
	if err != nil {
		return nil, err
	}
	response := report.AsJSONData()
	delete(response, catalog.FieldResponseStatus)
	return response, nil
}

// Exchange resolves one raw JSON request and renders the JSON response.
// Malformed JSON or an unparsable URL fails the exchange; no exchange
// state survives a failure.
func (e *Engine) Exchange(requestJSON []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(requestJSON))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding exchange request: %w", err)
	}
	request, err := catalog.NormalizeCase(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing exchange request: %w", err)
	}

	response, err := e.Handle(request)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("encoding exchange response: %w", err)
	}
	return out, nil
}
