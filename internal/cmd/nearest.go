package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// nearestCmd represents the nearest command
var nearestCmd = &cobra.Command{
	Use:   "nearest [request-file|-]",
	Short: "Report the nearest recorded cases for a request",
	Long: `Run the nearest-match diagnostics for a request, even when an exact
match exists.

The report names the most specific difference it can find, in order:
available additional field value sets, minimal JSON request body deltas,
closest request bodies, available HTTP methods, minimal query string
deltas, or the closest URL paths. Exactly one report variant is produced.

Ranking beyond the top five candidates is cut off by a soft deadline
(300ms by default, configurable via match.timeout_ms or --timeout).

Examples:
  casewise nearest request.json
  casewise nearest request.json --timeout 1s
  casewise nearest - < request.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNearest,
}

var nearestTimeout time.Duration

func init() {
	rootCmd.AddCommand(nearestCmd)
	nearestCmd.Flags().DurationVar(&nearestTimeout, "timeout", 0, "Soft matching deadline (default: configured match.timeout_ms)")
}

func runNearest(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	index, err := proj.loadIndex()
	if err != nil {
		return err
	}

	request, err := readRequestDoc(args)
	if err != nil {
		return err
	}

	timeout := nearestTimeout
	if timeout <= 0 {
		timeout = proj.matchTimeout()
	}

	report, err := index.BestMatches(request, timeout)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	return printResult(report.AsJSONData())
}
