package gateway

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/casewise/casewise/internal/catalog"
	"github.com/casewise/casewise/internal/match"
)

// Case fields the event builders consume beyond the core matching fields.
const (
	FieldStageVariables  = "stageVariables"
	FieldIdentity        = "identity"
	FieldClientCert      = "client certificate"
	FieldAuthorization   = "request authorization"
	FieldRequestHeaders  = "request headers"
	FieldResponseHeaders = "response headers"
)

// BuildHTTPEvent renders a case as an HTTP API (v2) Lambda proxy event.
func BuildHTTPEvent(c catalog.Case) (events.APIGatewayV2HTTPRequest, error) {
	var event events.APIGatewayV2HTTPRequest

	u, err := url.Parse(c.URL())
	if err != nil {
		return event, fmt.Errorf("parsing url %q: %w", c.URL(), err)
	}

	event = events.APIGatewayV2HTTPRequest{
		RawPath:               u.Path,
		RawQueryString:        u.RawQuery,
		Headers:               map[string]string{},
		QueryStringParameters: map[string]string{},
		StageVariables:        map[string]string{},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   c.Method(),
				Path:     u.Path,
				Protocol: "HTTP/1.1",
			},
		},
	}

	if vars, ok := c[FieldStageVariables]; ok {
		event.StageVariables, err = stringMap(vars)
		if err != nil {
			return event, fmt.Errorf("stage variables: %w", err)
		}
	}
	if cert, ok := c[FieldClientCert]; ok {
		if err := jsonInto(cert, &event.RequestContext.Authentication.ClientCert); err != nil {
			return event, fmt.Errorf("client certificate: %w", err)
		}
	}
	if auth, ok := c[FieldAuthorization]; ok {
		event.RequestContext.Authorizer = &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{}
		if err := jsonInto(auth, event.RequestContext.Authorizer); err != nil {
			return event, fmt.Errorf("request authorization: %w", err)
		}
	}

	if headers, ok := c[FieldRequestHeaders]; ok {
		pairs, err := headerPairs(headers)
		if err != nil {
			return event, fmt.Errorf("request headers: %w", err)
		}
		for _, p := range pairs {
			// HTTP API v2 folds repeated headers into one comma-joined value.
			if existing, ok := event.Headers[p[0]]; ok {
				event.Headers[p[0]] = existing + "," + p[1]
			} else {
				event.Headers[p[0]] = p[1]
			}
		}
	}

	for _, p := range match.ParseQuery(u.RawQuery) {
		if existing, ok := event.QueryStringParameters[p.Name]; ok {
			event.QueryStringParameters[p.Name] = existing + "," + p.Value
		} else {
			event.QueryStringParameters[p.Name] = p.Value
		}
	}

	if body, ok := c[catalog.FieldRequestBody]; ok {
		if err := setEventBody(body,
			func(s string, b64 bool) { event.Body, event.IsBase64Encoded = s, b64 },
			func(contentType string) { event.Headers["Content-Type"] = contentType },
		); err != nil {
			return event, err
		}
	}

	return event, nil
}

// BuildRESTEvent renders a case as a REST API Lambda integration event.
// The first segment of the case URL names the deployment stage.
func BuildRESTEvent(c catalog.Case) (events.APIGatewayProxyRequest, error) {
	var event events.APIGatewayProxyRequest

	u, err := url.Parse(c.URL())
	if err != nil {
		return event, fmt.Errorf("parsing url %q: %w", c.URL(), err)
	}
	trimmed := strings.TrimPrefix(u.Path, "/")
	stage, path, ok := strings.Cut(trimmed, "/")
	if !ok {
		return event, fmt.Errorf("url path %q has no stage segment", u.Path)
	}

	event = events.APIGatewayProxyRequest{
		Path:                            "/" + path,
		HTTPMethod:                      c.Method(),
		Headers:                         map[string]string{},
		MultiValueHeaders:               map[string][]string{},
		QueryStringParameters:           map[string]string{},
		MultiValueQueryStringParameters: map[string][]string{},
		StageVariables:                  map[string]string{},
		RequestContext: events.APIGatewayProxyRequestContext{
			Stage: stage,
		},
	}

	if vars, ok := c[FieldStageVariables]; ok {
		event.StageVariables, err = stringMap(vars)
		if err != nil {
			return event, fmt.Errorf("stage variables: %w", err)
		}
	}
	if identity, ok := c[FieldIdentity]; ok {
		if err := jsonInto(identity, &event.RequestContext.Identity); err != nil {
			return event, fmt.Errorf("identity: %w", err)
		}
	}

	if headers, ok := c[FieldRequestHeaders]; ok {
		pairs, err := headerPairs(headers)
		if err != nil {
			return event, fmt.Errorf("request headers: %w", err)
		}
		for _, p := range pairs {
			event.Headers[p[0]] = p[1]
			event.MultiValueHeaders[p[0]] = append(event.MultiValueHeaders[p[0]], p[1])
		}
	}

	for _, p := range match.ParseQuery(u.RawQuery) {
		event.QueryStringParameters[p.Name] = p.Value
		event.MultiValueQueryStringParameters[p.Name] = append(event.MultiValueQueryStringParameters[p.Name], p.Value)
	}

	if body, ok := c[catalog.FieldRequestBody]; ok {
		if err := setEventBody(body,
			func(s string, b64 bool) { event.Body, event.IsBase64Encoded = s, b64 },
			func(contentType string) {
				event.Headers["Content-Type"] = contentType
				event.MultiValueHeaders["Content-Type"] = []string{contentType}
			},
		); err != nil {
			return event, err
		}
	}

	return event, nil
}

// setEventBody encodes a request body into a Lambda event: strings pass
// through, byte sequences are base64-encoded, and JSON-compatible data is
// rendered to JSON with a matching Content-Type.
func setEventBody(body any, setBody func(string, bool), setContentType func(string)) error {
	switch b := body.(type) {
	case string:
		setBody(b, false)
	case []byte:
		setBody(base64.StdEncoding.EncodeToString(b), true)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		setBody(string(data), false)
		setContentType("application/json")
	}
	return nil
}

// headerPairs accepts either a mapping or a sequence of 2-item pairs and
// returns (name, value) pairs. Mappings are sorted by name; Go map order
// would otherwise leak into folded header values.
func headerPairs(v any) ([][2]string, error) {
	switch h := v.(type) {
	case map[string]any:
		names := make([]string, 0, len(h))
		for name := range h {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([][2]string, 0, len(names))
		for _, name := range names {
			value, ok := h[name].(string)
			if !ok {
				return nil, fmt.Errorf("header %q: value must be a string, got %T", name, h[name])
			}
			pairs = append(pairs, [2]string{name, value})
		}
		return pairs, nil
	case []any:
		pairs := make([][2]string, 0, len(h))
		for _, item := range h {
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("header entry %v: expected a 2-item pair", item)
			}
			name, nok := pair[0].(string)
			value, vok := pair[1].(string)
			if !nok || !vok {
				return nil, fmt.Errorf("header entry %v: name and value must be strings", item)
			}
			pairs = append(pairs, [2]string{name, value})
		}
		return pairs, nil
	default:
		return nil, fmt.Errorf("unsupported headers type %T", v)
	}
}

// stringMap converts a case mapping with scalar string values.
func stringMap(v any) (map[string]string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("key %q: value must be a string, got %T", k, val)
		}
		out[k] = s
	}
	return out, nil
}

// jsonInto copies loosely-typed case data into a typed event field.
func jsonInto(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
