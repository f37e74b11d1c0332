package gateway

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

const serverlessYAML = `
service: pets
functions:
  getPet:
    handler: handlers/pets.get
    events:
      - httpApi: "GET /pets/{id}"
  listPets:
    handler: handlers/pets.list
    events:
      - httpApi:
          method: GET
          path: /pets
  catchAll:
    handler: handlers/fallback.any
    events:
      - httpApi: "*"
`

func echoHandler(tag string) HTTPHandler {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return events.APIGatewayV2HTTPResponse{Body: tag}, nil
	}
}

func writeServerlessConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ServerlessConfigFile), []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return dir
}

func TestServerlessMapperRouting(t *testing.T) {
	registry := NewRegistry()
	registry.Register("handlers/pets.get", echoHandler("get"))
	registry.Register("handlers/pets.list", echoHandler("list"))
	registry.Register("handlers/fallback.any", echoHandler("fallback"))

	dir := writeServerlessConfig(t, serverlessYAML)
	m, err := NewServerlessMapper(dir, registry)
	if err != nil {
		t.Fatalf("NewServerlessMapper: %v", err)
	}
	if m.ProjectDir() != dir {
		t.Errorf("ProjectDir() = %q, want %q", m.ProjectDir(), dir)
	}

	invoke := func(t *testing.T, method, path string) (string, map[string]string) {
		t.Helper()
		handler, params, err := m.Map(method, path)
		if err != nil {
			t.Fatalf("Map(%q, %q): %v", method, path, err)
		}
		result, err := handler(context.Background(), events.APIGatewayV2HTTPRequest{})
		if err != nil {
			t.Fatalf("handler: %v", err)
		}
		return result.Body, params
	}

	t.Run("literal route wins over param route", func(t *testing.T) {
		body, params := invoke(t, "GET", "/pets")
		if body != "list" {
			t.Errorf("routed to %q, want list", body)
		}
		if len(params) != 0 {
			t.Errorf("params = %v, want none", params)
		}
	})

	t.Run("param route extracts id", func(t *testing.T) {
		body, params := invoke(t, "GET", "/pets/42")
		if body != "get" {
			t.Errorf("routed to %q, want get", body)
		}
		if params["id"] != "42" {
			t.Errorf("params = %v, want id=42", params)
		}
	})

	t.Run("wildcard catches everything else", func(t *testing.T) {
		body, params := invoke(t, "DELETE", "/owners/7/pets")
		if body != "fallback" {
			t.Errorf("routed to %q, want fallback", body)
		}
		if params["proxy"] != "owners/7/pets" {
			t.Errorf("params = %v, want proxy=owners/7/pets", params)
		}
	})
}

func TestServerlessMapperErrors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		if _, err := NewServerlessMapper(t.TempDir(), NewRegistry()); err == nil {
			t.Error("NewServerlessMapper succeeded without serverless.yml")
		}
	})

	t.Run("unregistered handler", func(t *testing.T) {
		dir := writeServerlessConfig(t, serverlessYAML)
		registry := NewRegistry()
		registry.Register("handlers/pets.get", echoHandler("get"))
		if _, err := NewServerlessMapper(dir, registry); err == nil {
			t.Error("NewServerlessMapper succeeded with unregistered handler names")
		}
	})

	t.Run("malformed httpApi entry", func(t *testing.T) {
		dir := writeServerlessConfig(t, `
functions:
  broken:
    handler: handlers/pets.get
    events:
      - httpApi: "GET /pets extra"
`)
		registry := NewRegistry()
		registry.Register("handlers/pets.get", echoHandler("get"))
		if _, err := NewServerlessMapper(dir, registry); err == nil {
			t.Error("NewServerlessMapper accepted a malformed httpApi entry")
		}
	})

	t.Run("httpApi mapping without path", func(t *testing.T) {
		dir := writeServerlessConfig(t, `
functions:
  broken:
    handler: handlers/pets.get
    events:
      - httpApi:
          method: GET
`)
		registry := NewRegistry()
		registry.Register("handlers/pets.get", echoHandler("get"))
		if _, err := NewServerlessMapper(dir, registry); err == nil {
			t.Error("NewServerlessMapper accepted an httpApi mapping without a path")
		}
	})
}

func TestServerlessMapperNoRoute(t *testing.T) {
	dir := writeServerlessConfig(t, `
functions:
  getPet:
    handler: handlers/pets.get
    events:
      - httpApi: "GET /pets/{id}"
`)
	registry := NewRegistry()
	registry.Register("handlers/pets.get", echoHandler("get"))
	m, err := NewServerlessMapper(dir, registry)
	if err != nil {
		t.Fatalf("NewServerlessMapper: %v", err)
	}

	_, _, err = m.Map("POST", "/pets/42")
	var noRoute *NoRouteError
	if !errors.As(err, &noRoute) {
		t.Fatalf("Map error = %v, want NoRouteError", err)
	}
	if noRoute.Method != "POST" || noRoute.Path != "/pets/42" {
		t.Errorf("NoRouteError = %+v", noRoute)
	}
}
