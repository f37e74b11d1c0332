package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/casewise/casewise/internal/catalog"
	"github.com/casewise/casewise/internal/match"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [glob...]",
	Short: "Parse and check all configured case files",
	Long: `Parse every configured case file, normalize each case, and verify the
whole catalogue indexes cleanly.

Each file is reported with its case count, or with the parse error that
makes it unusable. Explicit glob arguments override the configured case
file patterns.

Examples:
  casewise validate
  casewise validate 'cases/**/*.yaml'`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
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
		fmt.Printf("No case files match %v\n", patterns)
		return nil
	}

	var all []catalog.Case
	failures := 0
	for _, path := range paths {
		rel, relErr := filepath.Rel(proj.Root, path)
		if relErr != nil {
			rel = path
		}

		cases, err := catalog.LoadFile(path)
		if err != nil {
			failures++
			fmt.Printf("FAIL  %s: %v\n", rel, err)
			continue
		}
		fmt.Printf("ok    %s: %d cases\n", rel, len(cases))
		all = append(all, cases...)
	}

	// Indexing catches URLs that parse as YAML but not as URLs
	keyer := catalog.NewKeyer(proj.Config.Catalog.AdditionalRequestKeys)
	index, err := match.NewIndex(all, keyer)
	if err != nil {
		return fmt.Errorf("catalogue does not index: %w", err)
	}

	fmt.Printf("\n%d files, %d cases, %d exact keys", len(paths), len(all), index.Len())
	if dup := len(all) - index.Len(); dup > 0 {
		fmt.Printf(" (%d duplicate)", dup)
	}
	fmt.Println()

	if failures > 0 {
		return fmt.Errorf("%d case files failed validation", failures)
	}
	return nil
}
