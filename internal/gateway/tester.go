package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/casewise/casewise/internal/catalog"
)

// RESTHandler is an AWS Lambda handler for a REST API integration.
type RESTHandler func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// CaseEnv wraps handler invocation with per-case setup. It returns the
// matching teardown.
type CaseEnv func(c catalog.Case) (teardown func(), err error)

// Tester replays recorded cases against HTTP API (v2) Lambda handlers and
// verifies the responses match the recorded expectations.
type Tester struct {
	Mapper HandlerMapper

	// Env, when set, runs around each handler invocation.
	Env CaseEnv
}

// Test builds the Lambda event for one case, routes it, invokes the
// handler and confirms status, headers and body.
func (t *Tester) Test(ctx context.Context, c catalog.Case) error {
	event, err := BuildHTTPEvent(c)
	if err != nil {
		return err
	}

	handler, params, err := t.Mapper.Map(event.RequestContext.HTTP.Method, event.RawPath)
	if err != nil {
		return err
	}
	event.PathParameters = params

	if t.Env != nil {
		teardown, err := t.Env(c)
		if err != nil {
			return fmt.Errorf("case setup: %w", err)
		}
		defer teardown()
	}

	result, err := handler(ctx, event)
	if err != nil {
		return fmt.Errorf("handler: %w", err)
	}
	// HTTP API v2 output rule: an omitted status code means 200.
	if result.StatusCode == 0 {
		result.StatusCode = 200
	}

	if err := confirmStatus(result.StatusCode, c); err != nil {
		return err
	}
	if expected, ok := c[FieldResponseHeaders]; ok {
		if err := confirmHeaders(result.Headers, result.MultiValueHeaders, expected); err != nil {
			return err
		}
	}
	return confirmBody(result.Body, result.IsBase64Encoded, c[catalog.FieldResponseBody])
}

// RESTTester replays recorded cases against REST API Lambda handlers.
type RESTTester struct {
	Handler RESTHandler
	Env     CaseEnv
}

// Test builds the REST Lambda event for one case, invokes the handler and
// confirms status, headers and body.
func (t *RESTTester) Test(ctx context.Context, c catalog.Case) error {
	event, err := BuildRESTEvent(c)
	if err != nil {
		return err
	}

	if t.Env != nil {
		teardown, err := t.Env(c)
		if err != nil {
			return fmt.Errorf("case setup: %w", err)
		}
		defer teardown()
	}

	result, err := t.Handler(ctx, event)
	if err != nil {
		return fmt.Errorf("handler: %w", err)
	}

	if err := confirmStatus(result.StatusCode, c); err != nil {
		return err
	}
	if expected, ok := c[FieldResponseHeaders]; ok {
		if err := confirmHeaders(result.Headers, result.MultiValueHeaders, expected); err != nil {
			return err
		}
	}
	return confirmBody(result.Body, result.IsBase64Encoded, c[catalog.FieldResponseBody])
}

func confirmStatus(actual int, c catalog.Case) error {
	expected := int64(200)
	if status, ok := c[catalog.FieldResponseStatus].(int64); ok {
		expected = status
	}
	if int64(actual) != expected {
		return fmt.Errorf("expected HTTP response code %d, but got %d", expected, actual)
	}
	return nil
}

// confirmHeaders checks every expected header against the single-value and
// multi-value response headers. A header expected several times must
// appear in the multi-value headers with exactly that many values.
func confirmHeaders(actual map[string]string, actualMV map[string][]string, expected any) error {
	pairs, err := headerPairs(expected)
	if err != nil {
		return fmt.Errorf("response headers: %w", err)
	}

	var errs []string
	mvCounts := map[string]int{}
	for _, p := range pairs {
		name, value := p[0], p[1]
		switch {
		case actual[name] == value:
		case containsValue(actualMV[name], value):
			mvCounts[name]++
		default:
			errs = append(errs, fmt.Sprintf("header %q not found with value %q", name, value))
		}
	}

	for name, expectedCount := range mvCounts {
		if v, ok := actual[name]; ok && !containsValue(actualMV[name], v) {
			expectedCount--
		}
		if actualCount := len(actualMV[name]); actualCount != expectedCount {
			errs = append(errs, fmt.Sprintf(
				"multi-valued header %q appeared with %d value(s), but expected %d",
				name, actualCount, expectedCount))
		}
	}

	if len(errs) == 1 {
		return fmt.Errorf("%s", errs[0])
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors\n    * %s", strings.Join(errs, "\n    * "))
	}
	return nil
}

func containsValue(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// confirmBody compares the handler's response body against the recorded
// expectation: string expectations compare verbatim, byte expectations
// compare the decoded base64 body, anything else parses the body as JSON
// and compares structurally.
func confirmBody(body string, isBase64 bool, expected any) error {
	switch want := expected.(type) {
	case string:
		if body != want {
			return &UnexpectedResponseBodyError{Actual: body, Expected: want}
		}
	case []byte:
		if !isBase64 {
			return fmt.Errorf("handler result was not Base64 encoded (isBase64Encoded=false) when expected body is binary data")
		}
		actual, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
		if !bytes.Equal(actual, want) {
			return &UnexpectedResponseBodyError{Actual: actual, Expected: want}
		}
	default:
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("parsing response body as JSON: %w", err)
		}
		actual, err := catalog.Normalize(raw)
		if err != nil {
			return fmt.Errorf("normalizing response body: %w", err)
		}
		if catalog.Canonical(actual) != catalog.Canonical(expected) {
			return &UnexpectedResponseBodyError{Actual: actual, Expected: expected}
		}
	}
	return nil
}
