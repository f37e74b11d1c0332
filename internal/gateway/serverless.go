package gateway

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"gopkg.in/yaml.v3"
)

// HTTPHandler is an AWS Lambda handler for an HTTP API (v2) proxy
// integration.
type HTTPHandler func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// HandlerMapper maps an HTTP method and request path to a handler plus the
// path parameters the route extracted.
type HandlerMapper interface {
	Map(method, path string) (HTTPHandler, map[string]string, error)
}

// MapperFunc adapts a function to a HandlerMapper.
type MapperFunc func(method, path string) (HTTPHandler, map[string]string, error)

func (f MapperFunc) Map(method, path string) (HTTPHandler, map[string]string, error) {
	return f(method, path)
}

// Registry resolves the handler names a Serverless config references to
// Go handler functions. It stands in for the config's runtime handler
// loading, which has no place in a compiled test binary.
type Registry struct {
	handlers map[string]HTTPHandler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HTTPHandler)}
}

// Register binds a handler name, e.g. "handlers/pets.get", to a handler.
func (r *Registry) Register(name string, h HTTPHandler) {
	r.handlers[name] = h
}

// Lookup returns the handler bound to name.
func (r *Registry) Lookup(name string) (HTTPHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// ServerlessConfigFile is the Serverless project config file name.
const ServerlessConfigFile = "serverless.yml"

// ServerlessMapper is a HandlerMapper drawing its routes from a Serverless
// project config. Routes are matched most-literal first.
type ServerlessMapper struct {
	projectDir string
	routes     []Route
}

type serverlessConfig struct {
	Functions map[string]serverlessFunction `yaml:"functions"`
}

type serverlessFunction struct {
	Handler string `yaml:"handler"`
	Events  []struct {
		HTTPAPI any `yaml:"httpApi"`
	} `yaml:"events"`
}

// NewServerlessMapper reads serverless.yml from projectDir and compiles
// its httpApi routes, resolving handler names through the registry.
func NewServerlessMapper(projectDir string, registry *Registry) (*ServerlessMapper, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, ServerlessConfigFile))
	if err != nil {
		return nil, fmt.Errorf("reading serverless config: %w", err)
	}

	var cfg serverlessConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing serverless config: %w", err)
	}

	m := &ServerlessMapper{projectDir: projectDir}
	for name, fn := range cfg.Functions {
		handler, ok := registry.Lookup(fn.Handler)
		if !ok {
			return nil, fmt.Errorf("function %q: no registered handler named %q", name, fn.Handler)
		}
		for _, event := range fn.Events {
			if event.HTTPAPI == nil {
				continue
			}
			method, path, err := httpAPIRoute(event.HTTPAPI)
			if err != nil {
				return nil, fmt.Errorf("function %q: %w", name, err)
			}
			matcher, err := NewPathMatcher(method, path)
			if err != nil {
				return nil, fmt.Errorf("function %q: %w", name, err)
			}
			m.routes = append(m.routes, Route{Matcher: matcher, Handler: handler, Resource: path})
		}
	}
	sortRoutes(m.routes)
	return m, nil
}

// httpAPIRoute extracts (method, path) from one httpApi event entry, which
// is either a "METHOD /path" string, the wildcard "*", or a mapping with
// method and path keys.
func httpAPIRoute(entry any) (string, string, error) {
	switch e := entry.(type) {
	case string:
		if e == "*" {
			return "ANY", "/{proxy+}", nil
		}
		parts := strings.Fields(e)
		if len(parts) != 2 {
			return "", "", fmt.Errorf("malformed httpApi event %q", e)
		}
		return parts[0], parts[1], nil
	case map[string]any:
		method, _ := e["method"].(string)
		path, _ := e["path"].(string)
		if method == "" || path == "" {
			return "", "", fmt.Errorf("httpApi event needs method and path, got %v", e)
		}
		if method == "*" {
			method = "ANY"
		}
		return method, path, nil
	default:
		return "", "", fmt.Errorf("unsupported httpApi event type %T", entry)
	}
}

// ProjectDir returns the Serverless project directory.
func (m *ServerlessMapper) ProjectDir() string {
	return m.projectDir
}

// Map finds the first route matching method and path.
func (m *ServerlessMapper) Map(method, path string) (HTTPHandler, map[string]string, error) {
	for _, route := range m.routes {
		if params, ok := route.Matcher.Match(method, path); ok {
			return route.Handler, params, nil
		}
	}
	return nil, nil, &NoRouteError{Method: method, Path: path}
}
