package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/casewise/casewise/internal/config"
	"github.com/casewise/casewise/internal/exchange"
	"github.com/casewise/casewise/internal/mcp"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the case catalogue over MCP or HTTP",
	Long: `Serve the case catalogue to other processes.

With --mcp, an MCP (Model Context Protocol) server on stdio exposes the
catalogue to AI agents as tools, so repeated lookups don't pay CLI
startup cost each time.

With --http, an HTTP server exposes the exchange protocol: POST a
request document to /exchange and receive either the recorded case or a
nearest-match report.

Available MCP Tools:
  case_lookup    Exchange a request (exact case or report)
  case_nearest   Nearest-match diagnostic report
  case_summary   Catalogue summary

Examples:
  casewise serve --mcp                        # Start MCP server (stdio)
  casewise serve --mcp --tools lookup,nearest # Expose specific tools only
  casewise serve --mcp --timeout 30m          # Auto-stop after inactivity
  casewise serve --http 127.0.0.1:8080        # HTTP exchange server
  casewise serve --status                     # Check if MCP server is running
  casewise serve --stop                       # Stop running MCP server
  casewise serve --list-tools                 # Show available tools`,
	RunE: runServe,
}

var (
	serveMCP       bool
	serveHTTP      string
	serveTools     string
	serveTimeout   string
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveHTTP, "http", "", "Start HTTP exchange server on this address (empty: configured serve.addr)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of MCP tools to expose (default: lookup,nearest,summary)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "", "MCP inactivity timeout (default: configured; 0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if MCP server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running MCP server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available MCP tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Handle --list-tools
	if serveListTools {
		fmt.Println("Available MCP tools:")
		fmt.Println()
		fmt.Println("  case_lookup    Exchange a request (exact case or report)")
		fmt.Println("  case_nearest   Nearest-match diagnostic report")
		fmt.Println("  case_summary   Catalogue summary")
		fmt.Println()
		fmt.Println("Default set: lookup, nearest, summary")
		return nil
	}

	// Handle --status
	if serveStatus {
		return checkServerStatus()
	}

	// Handle --stop
	if serveStop {
		return stopServer()
	}

	if cmd.Flags().Changed("http") {
		return runServeHTTP(serveHTTP)
	}

	if !serveMCP {
		return fmt.Errorf("use --mcp or --http to start a server, or --help for usage")
	}
	return runServeMCP()
}

func runServeMCP() error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	// Parse timeout; default comes from config
	timeout := time.Duration(proj.Config.Serve.InactivityTimeoutMinutes) * time.Minute
	if serveTimeout != "" {
		timeout, err = parseDuration(serveTimeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}

	// Parse tools
	var tools []string
	if serveTools != "" {
		for _, t := range strings.Split(serveTools, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				// Allow shorthand (lookup -> case_lookup)
				if !strings.HasPrefix(t, "case_") {
					t = "case_" + t
				}
				tools = append(tools, t)
			}
		}
	}

	// Create and start server
	cfg := mcp.Config{
		Tools:   tools,
		Timeout: timeout,
	}

	server, err := mcp.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Write PID file
	if err := writePIDFile(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write PID file: %v\n", err)
	}
	defer removePIDFile()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\ncasewise serve: shutting down\n")
		server.Close()
		removePIDFile()
		os.Exit(0)
	}()

	// Log startup info to stderr (stdout is for MCP protocol)
	fmt.Fprintf(os.Stderr, "casewise serve: starting MCP server\n")
	fmt.Fprintf(os.Stderr, "casewise serve: tools: %v\n", server.ListTools())
	if timeout > 0 {
		fmt.Fprintf(os.Stderr, "casewise serve: timeout: %v\n", timeout)
	}

	// Start serving
	return server.ServeStdio()
}

func runServeHTTP(addr string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	engine, err := proj.loadEngine()
	if err != nil {
		return err
	}

	if addr == "" {
		addr = proj.Config.Serve.Addr
	}

	srvCfg := exchange.ServerConfig{
		Addr:          addr,
		LogFile:       proj.Config.Serve.LogFile,
		LogMaxSizeMB:  proj.Config.Serve.LogMaxSizeMB,
		LogMaxBackups: proj.Config.Serve.LogMaxBackups,
	}
	server := exchange.NewServer(engine, srvCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func getPIDFilePath() (string, error) {
	configDir, err := config.FindConfigDir(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "serve.pid"), nil
}

func writePIDFile() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return
	}
	os.Remove(pidPath)
}

func checkServerStatus() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		fmt.Println("Status: not running (casewise not initialized)")
		return nil
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		fmt.Println("Status: not running")
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Println("Status: not running (invalid PID file)")
		return nil
	}

	// Check if process exists
	process, err := os.FindProcess(pid)
	if err != nil {
		fmt.Println("Status: not running")
		removePIDFile()
		return nil
	}

	// On Unix, FindProcess always succeeds, so we need to send signal 0 to check
	err = process.Signal(syscall.Signal(0))
	if err != nil {
		fmt.Println("Status: not running (stale PID file)")
		removePIDFile()
		return nil
	}

	fmt.Printf("Status: running (PID %d)\n", pid)
	return nil
}

func stopServer() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return fmt.Errorf("casewise not initialized")
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		fmt.Println("No server running")
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		removePIDFile()
		return fmt.Errorf("invalid PID file")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		removePIDFile()
		fmt.Println("No server running")
		return nil
	}

	// Send SIGTERM for graceful shutdown
	err = process.Signal(syscall.SIGTERM)
	if err != nil {
		removePIDFile()
		fmt.Println("Server already stopped")
		return nil
	}

	fmt.Printf("Stopped server (PID %d)\n", pid)
	return nil
}
