// Package mcp provides an MCP (Model Context Protocol) server for casewise.
// This allows AI agents to query the case catalogue through MCP tools
// instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/casewise/casewise/internal/catalog"
	"github.com/casewise/casewise/internal/config"
	"github.com/casewise/casewise/internal/exchange"
	"github.com/casewise/casewise/internal/match"
	"github.com/casewise/casewise/internal/store"
)

// Server wraps the MCP server with casewise-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	index        *match.Index
	engine       *exchange.Engine
	store        *store.Store
	configDir    string
	projectRoot  string
	caseCount    int
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"case_lookup", "case_nearest", "case_summary"}

// AllTools lists all available tools
var AllTools = []string{"case_lookup", "case_nearest", "case_summary"}

// New creates a new MCP server for casewise
func New(cfg Config) (*Server, error) {
	// Find .casewise directory
	configDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("casewise not initialized: run 'casewise init' first")
	}
	projectRoot := filepath.Dir(configDir)

	appCfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cases, err := catalog.LoadGlobs(projectRoot, appCfg.Catalog.CaseFiles)
	if err != nil {
		return nil, fmt.Errorf("loading case files: %w", err)
	}

	// Cases imported into the store extend the file catalogue
	var caseStore *store.Store
	if appCfg.Catalog.Store != "" {
		caseStore, err = store.Open(configDir, appCfg.Catalog.Store)
		if err != nil {
			return nil, fmt.Errorf("opening case store: %w", err)
		}
		stored, err := caseStore.LoadAll()
		if err != nil {
			caseStore.Close()
			return nil, fmt.Errorf("loading stored cases: %w", err)
		}
		cases = append(cases, stored...)
	}

	keyer := catalog.NewKeyer(appCfg.Catalog.AdditionalRequestKeys)
	index, err := match.NewIndex(cases, keyer)
	if err != nil {
		if caseStore != nil {
			caseStore.Close()
		}
		return nil, fmt.Errorf("indexing cases: %w", err)
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"casewise",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		index:        index,
		engine:       exchange.NewEngine(index, time.Duration(appCfg.Match.TimeoutMS)*time.Millisecond),
		store:        caseStore,
		configDir:    configDir,
		projectRoot:  projectRoot,
		caseCount:    len(cases),
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	// Determine which tools to register
	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	// Register tools
	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "case_lookup":
		return s.registerLookupTool()
	case "case_nearest":
		return s.registerNearestTool()
	case "case_summary":
		return s.registerSummaryTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	// Start timeout checker if timeout is set
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "casewise serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"case_lookup": {
		Name:        "case_lookup",
		Description: "Look up a recorded test case by request. Returns the matched case with a response status, or a nearest-match report explaining why nothing matched.",
		Parameters: []ParameterSchema{
			{Name: "request", Type: "object", Description: "Request document with method, url, optional request body and additional correlation fields", Required: true},
		},
	},
	"case_nearest": {
		Name:        "case_nearest",
		Description: "Find the nearest recorded cases for a request without attempting an exact match. Always returns a diagnostic report.",
		Parameters: []ParameterSchema{
			{Name: "request", Type: "object", Description: "Request document with method, url, optional request body and additional correlation fields", Required: true},
			{Name: "timeout_ms", Type: "number", Description: "Soft matching budget in milliseconds (default: configured value)"},
		},
	},
	"case_summary": {
		Name:        "case_summary",
		Description: "Summarize the indexed case catalogue: case and key counts, plus imported store sources.",
		Parameters:  []ParameterSchema{},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'casewise call --list' to see available tools)", name)
	}

	switch name {
	case "case_lookup":
		request, ok := args["request"].(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("request parameter is required and must be an object")
		}
		return s.executeLookup(request)

	case "case_nearest":
		request, ok := args["request"].(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("request parameter is required and must be an object")
		}
		timeout := time.Duration(0)
		if t, ok := args["timeout_ms"].(float64); ok {
			timeout = time.Duration(t) * time.Millisecond
		}
		return s.executeNearest(request, timeout)

	case "case_summary":
		return s.executeSummary()

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerLookupTool registers the case_lookup tool
func (s *Server) registerLookupTool() error {
	tool := mcp.NewTool("case_lookup",
		mcp.WithDescription("Look up a recorded test case by request. Returns the matched case with a response status, or a nearest-match report explaining why nothing matched."),
		mcp.WithObject("request",
			mcp.Required(),
			mcp.Description("Request document with method, url, optional request body and additional correlation fields"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleLookup)
	return nil
}

// registerNearestTool registers the case_nearest tool
func (s *Server) registerNearestTool() error {
	tool := mcp.NewTool("case_nearest",
		mcp.WithDescription("Find the nearest recorded cases for a request without attempting an exact match. Always returns a diagnostic report."),
		mcp.WithObject("request",
			mcp.Required(),
			mcp.Description("Request document with method, url, optional request body and additional correlation fields"),
		),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Soft matching budget in milliseconds (default: configured value)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleNearest)
	return nil
}

// registerSummaryTool registers the case_summary tool
func (s *Server) registerSummaryTool() error {
	tool := mcp.NewTool("case_summary",
		mcp.WithDescription("Summarize the indexed case catalogue: case and key counts, plus imported store sources."),
	)

	s.mcpServer.AddTool(tool, s.handleSummary)
	return nil
}

// Tool handlers

func (s *Server) handleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	request, ok := args["request"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("request parameter is required and must be an object"), nil
	}

	result, err := s.executeLookup(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleNearest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	request, ok := args["request"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("request parameter is required and must be an object"), nil
	}
	timeout := time.Duration(0)
	if t, ok := args["timeout_ms"].(float64); ok {
		timeout = time.Duration(t) * time.Millisecond
	}

	result, err := s.executeNearest(request, timeout)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.executeSummary()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Tool implementations

func (s *Server) executeLookup(request map[string]interface{}) (string, error) {
	req, err := catalog.NormalizeCase(request)
	if err != nil {
		return "", fmt.Errorf("normalizing request: %w", err)
	}

	response, err := s.engine.Handle(req)
	if err != nil {
		return "", err
	}
	return renderJSON(response)
}

func (s *Server) executeNearest(request map[string]interface{}, timeout time.Duration) (string, error) {
	req, err := catalog.NormalizeCase(request)
	if err != nil {
		return "", fmt.Errorf("normalizing request: %w", err)
	}
	if timeout <= 0 {
		timeout = match.DefaultTimeout
	}

	report, err := s.index.BestMatches(req, timeout)
	if err != nil {
		return "", err
	}
	return renderJSON(report.AsJSONData())
}

func (s *Server) executeSummary() (string, error) {
	summary := map[string]interface{}{
		"cases":      s.caseCount,
		"exact keys": s.index.Len(),
	}
	if s.store != nil {
		sources, err := s.store.Sources()
		if err != nil {
			return "", fmt.Errorf("reading store sources: %w", err)
		}
		summary["store sources"] = sources
	}
	return renderJSON(summary)
}

func renderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}
