package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/casewise/casewise/internal/catalog"
	"github.com/casewise/casewise/internal/config"
	"github.com/casewise/casewise/internal/exchange"
	"github.com/casewise/casewise/internal/match"
	"github.com/casewise/casewise/internal/output"
	"github.com/casewise/casewise/internal/store"
)

// Shared utility functions for command implementations

// project holds everything a command needs from an initialized directory.
type project struct {
	ConfigDir string
	Root      string
	Config    *config.Config
}

// loadProject locates the .casewise directory from the current directory
// and loads configuration, honoring the global --config flag.
func loadProject() (*project, error) {
	configDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("casewise not initialized: run 'casewise init' first")
	}
	root := filepath.Dir(configDir)

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &project{ConfigDir: configDir, Root: root, Config: cfg}, nil
}

// loadCatalogue loads all configured case files, plus the SQLite store
// contents when a store is configured.
func (p *project) loadCatalogue() ([]catalog.Case, error) {
	cases, err := catalog.LoadGlobs(p.Root, p.Config.Catalog.CaseFiles)
	if err != nil {
		return nil, fmt.Errorf("loading case files: %w", err)
	}

	if p.Config.Catalog.Store != "" {
		db, err := store.Open(p.ConfigDir, p.Config.Catalog.Store)
		if err != nil {
			return nil, fmt.Errorf("opening case store: %w", err)
		}
		defer db.Close()

		stored, err := db.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("loading stored cases: %w", err)
		}
		cases = append(cases, stored...)
	}

	return cases, nil
}

// loadIndex builds the case index from the full catalogue.
func (p *project) loadIndex() (*match.Index, error) {
	cases, err := p.loadCatalogue()
	if err != nil {
		return nil, err
	}
	keyer := catalog.NewKeyer(p.Config.Catalog.AdditionalRequestKeys)
	index, err := match.NewIndex(cases, keyer)
	if err != nil {
		return nil, fmt.Errorf("indexing cases: %w", err)
	}
	return index, nil
}

// loadEngine builds the exchange engine from the full catalogue.
func (p *project) loadEngine() (*exchange.Engine, error) {
	index, err := p.loadIndex()
	if err != nil {
		return nil, err
	}
	return exchange.NewEngine(index, p.matchTimeout()), nil
}

func (p *project) matchTimeout() time.Duration {
	return time.Duration(p.Config.Match.TimeoutMS) * time.Millisecond
}

// readRequestDoc reads a request document for lookup/nearest. The argument
// is a file path or "-" for stdin; with no argument stdin is read. The
// document is JSON or YAML, same as case files.
func readRequestDoc(args []string) (catalog.Case, error) {
	var data []byte
	var err error

	switch {
	case len(args) == 0 || args[0] == "-":
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	default:
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("reading request: %w", err)
		}
	}

	return catalog.ParseRequest(data)
}

// printResult renders a value to stdout in the selected output format.
func printResult(v interface{}) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(os.Stdout, v)
}
