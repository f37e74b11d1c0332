package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/casewise/casewise/internal/catalog"
	"github.com/casewise/casewise/internal/store"
	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [glob...]",
	Short: "Import case files into the local store",
	Long: `Import case files into the SQLite case store (.casewise/cases.db).

Each imported file becomes a store source keyed by its path relative to
the project root; re-importing a file replaces its cases. Stored cases
extend the file catalogue when the config sets catalog.store.

With no arguments the configured case file patterns are imported.

Examples:
  casewise import                         # Import configured case files
  casewise import 'recorded/**/*.yaml'    # Import specific files
  casewise import --status                # Show store contents
  casewise import --rm recorded/old.yaml  # Remove one source`,
	RunE: runImport,
}

var (
	importStatus bool
	importRemove string
)

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importStatus, "status", false, "Show store contents summary")
	importCmd.Flags().StringVar(&importRemove, "rm", "", "Remove one imported source by name")
}

func runImport(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	db, err := store.Open(proj.ConfigDir, proj.Config.Catalog.Store)
	if err != nil {
		return fmt.Errorf("opening case store: %w", err)
	}
	defer db.Close()

	if importStatus {
		return showStoreStatus(db)
	}
	if importRemove != "" {
		return removeSource(db, importRemove)
	}

	patterns := proj.Config.Catalog.CaseFiles
	if len(args) > 0 {
		patterns = args
	}

	paths, err := catalog.GlobPaths(proj.Root, patterns)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no case files match %v", patterns)
	}

	total := 0
	for _, path := range paths {
		source, relErr := filepath.Rel(proj.Root, path)
		if relErr != nil {
			source = path
		}

		cases, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}
		if err := db.ImportSource(source, cases); err != nil {
			return fmt.Errorf("importing %s: %w", source, err)
		}
		fmt.Printf("Imported %s: %d cases\n", source, len(cases))
		total += len(cases)
	}

	fmt.Printf("\nImported %d cases from %d files into %s\n", total, len(paths), db.Path())
	return nil
}

func showStoreStatus(db *store.Store) error {
	stats, err := db.GetStats()
	if err != nil {
		return fmt.Errorf("reading store stats: %w", err)
	}

	fmt.Printf("Store: %s\n", db.Path())
	fmt.Printf("Cases: %d across %d sources\n", stats.CaseCount, stats.SourceCount)

	sources, err := db.Sources()
	if err != nil {
		return fmt.Errorf("reading store sources: %w", err)
	}
	if len(sources) == 0 {
		return nil
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	for _, name := range names {
		fmt.Printf("  %s: %d cases\n", name, sources[name])
	}
	return nil
}

func removeSource(db *store.Store, source string) error {
	err := db.DeleteSource(source)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no imported source named %q", source)
	}
	if err != nil {
		return fmt.Errorf("removing source: %w", err)
	}
	fmt.Printf("Removed source %s\n", source)
	return nil
}
