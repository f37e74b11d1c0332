package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup [request-file|-]",
	Short: "Exchange a request against the case catalogue",
	Long: `Look up a request document against the indexed case catalogue.

On an exact match the recorded case is printed, with "response status"
defaulted to 200 when the case does not record one. When nothing matches
exactly, a nearest-match report is printed instead; a report never
contains a "response status" key, which is how callers tell the two
outcomes apart.

The request document is JSON or YAML with at least a url, and optionally
method, "request body", and additional correlation fields. It is read
from the given file, or from stdin when the argument is "-" or omitted.

Examples:
  casewise lookup request.json
  casewise lookup - < request.json
  casewise lookup request.yaml --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	engine, err := proj.loadEngine()
	if err != nil {
		return err
	}

	request, err := readRequestDoc(args)
	if err != nil {
		return err
	}

	result, err := engine.Handle(request)
	if err != nil {
		return fmt.Errorf("exchange failed: %w", err)
	}

	return printResult(result)
}
