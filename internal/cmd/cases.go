package cmd

import (
	"fmt"

	"github.com/casewise/casewise/internal/catalog"
	"github.com/casewise/casewise/internal/match"
	"github.com/spf13/cobra"
)

// casesCmd represents the cases command
var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Summarize the indexed case catalogue",
	Long: `Show a summary of the case catalogue: total case and key counts, and
per-path case counts with the HTTP methods recorded for each path.

The case count can exceed the key count when several cases derive the
same exact-match key; the last such case wins lookups.

Examples:
  casewise cases
  casewise cases --format json`,
	RunE: runCases,
}

func init() {
	rootCmd.AddCommand(casesCmd)
}

func runCases(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	cases, err := proj.loadCatalogue()
	if err != nil {
		return err
	}

	keyer := catalog.NewKeyer(proj.Config.Catalog.AdditionalRequestKeys)
	index, err := match.NewIndex(cases, keyer)
	if err != nil {
		return fmt.Errorf("indexing cases: %w", err)
	}

	summary := map[string]interface{}{
		"cases": len(cases),
		"keys":  index.Len(),
		"paths": index.Summarize(),
	}

	return printResult(summary)
}
