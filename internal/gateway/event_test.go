package gateway

import (
	"reflect"
	"testing"

	"github.com/casewise/casewise/internal/catalog"
)

func TestBuildHTTPEvent(t *testing.T) {
	c := catalog.Case{
		catalog.FieldMethod:      "post",
		catalog.FieldURL:         "/pets?tag=dog&tag=cat",
		catalog.FieldRequestBody: map[string]any{"name": "Rex"},
		FieldRequestHeaders:      map[string]any{"X-Trace": "abc"},
		FieldStageVariables:      map[string]any{"env": "test"},
	}

	event, err := BuildHTTPEvent(c)
	if err != nil {
		t.Fatalf("BuildHTTPEvent: %v", err)
	}
	if event.RawPath != "/pets" || event.RawQueryString != "tag=dog&tag=cat" {
		t.Errorf("path/query = %q %q", event.RawPath, event.RawQueryString)
	}
	if event.RequestContext.HTTP.Method != "post" {
		t.Errorf("method = %q", event.RequestContext.HTTP.Method)
	}
	if got := event.QueryStringParameters["tag"]; got != "dog,cat" {
		t.Errorf("tag = %q, want folded dog,cat", got)
	}
	if event.Body != `{"name":"Rex"}` || event.IsBase64Encoded {
		t.Errorf("body = %q (base64=%v)", event.Body, event.IsBase64Encoded)
	}
	if event.Headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", event.Headers["Content-Type"])
	}
	if event.Headers["X-Trace"] != "abc" {
		t.Errorf("X-Trace = %q", event.Headers["X-Trace"])
	}
	if !reflect.DeepEqual(event.StageVariables, map[string]string{"env": "test"}) {
		t.Errorf("stage variables = %v", event.StageVariables)
	}
}

func TestBuildHTTPEventBinaryBody(t *testing.T) {
	c := catalog.Case{
		catalog.FieldURL:         "/fingerprint",
		catalog.FieldRequestBody: []byte("123456789"),
	}
	event, err := BuildHTTPEvent(c)
	if err != nil {
		t.Fatalf("BuildHTTPEvent: %v", err)
	}
	if event.Body != "MTIzNDU2Nzg5" || !event.IsBase64Encoded {
		t.Errorf("body = %q (base64=%v), want encoded bytes", event.Body, event.IsBase64Encoded)
	}
	if _, ok := event.Headers["Content-Type"]; ok {
		t.Error("binary body must not force a Content-Type")
	}
}

func TestBuildHTTPEventRepeatedHeaders(t *testing.T) {
	c := catalog.Case{
		catalog.FieldURL: "/x",
		FieldRequestHeaders: []any{
			[]any{"Accept", "text/plain"},
			[]any{"Accept", "application/json"},
		},
	}
	event, err := BuildHTTPEvent(c)
	if err != nil {
		t.Fatalf("BuildHTTPEvent: %v", err)
	}
	if got := event.Headers["Accept"]; got != "text/plain,application/json" {
		t.Errorf("Accept = %q, want comma-folded values", got)
	}
}

func TestBuildHTTPEventBadHeaders(t *testing.T) {
	c := catalog.Case{
		catalog.FieldURL:    "/x",
		FieldRequestHeaders: map[string]any{"X": int64(1)},
	}
	if _, err := BuildHTTPEvent(c); err == nil {
		t.Error("BuildHTTPEvent accepted a non-string header value")
	}
}

func TestBuildRESTEvent(t *testing.T) {
	c := catalog.Case{
		catalog.FieldMethod:      "put",
		catalog.FieldURL:         "/dev/pets/1?x=1",
		catalog.FieldRequestBody: "raw text",
		FieldRequestHeaders:      map[string]any{"X-Trace": "abc"},
	}
	event, err := BuildRESTEvent(c)
	if err != nil {
		t.Fatalf("BuildRESTEvent: %v", err)
	}
	if event.RequestContext.Stage != "dev" {
		t.Errorf("stage = %q, want dev", event.RequestContext.Stage)
	}
	if event.Path != "/pets/1" {
		t.Errorf("path = %q, want /pets/1", event.Path)
	}
	if event.HTTPMethod != "put" {
		t.Errorf("method = %q", event.HTTPMethod)
	}
	if event.Body != "raw text" || event.IsBase64Encoded {
		t.Errorf("body = %q (base64=%v)", event.Body, event.IsBase64Encoded)
	}
	if event.QueryStringParameters["x"] != "1" {
		t.Errorf("query params = %v", event.QueryStringParameters)
	}
	if !reflect.DeepEqual(event.MultiValueQueryStringParameters["x"], []string{"1"}) {
		t.Errorf("multi-value query params = %v", event.MultiValueQueryStringParameters)
	}
	if !reflect.DeepEqual(event.MultiValueHeaders["X-Trace"], []string{"abc"}) {
		t.Errorf("multi-value headers = %v", event.MultiValueHeaders)
	}
}

func TestBuildRESTEventNoStage(t *testing.T) {
	if _, err := BuildRESTEvent(catalog.Case{catalog.FieldURL: "/pets"}); err == nil {
		t.Error("BuildRESTEvent accepted a url without a stage segment")
	}
}
