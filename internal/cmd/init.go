package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/casewise/casewise/internal/config"
	"github.com/casewise/casewise/internal/store"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .casewise directory and default config",
	Long: `Initialize the .casewise directory in the current directory.

This writes a default config.yaml and creates the local case store
database. The config controls which case files make up the catalogue,
which additional request fields participate in exact matching, and the
nearest-match timeout.

Examples:
  casewise init          # Initialize in current directory
  casewise init --force  # Rewrite the default config over an existing one`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Rewrite config even if .casewise already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configFile := filepath.Join(cwd, config.ConfigDirName, config.ConfigFileName)

	_, err = os.Stat(configFile)
	if err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, configFile)
			fmt.Printf("Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(configFile); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	written, err := config.SaveDefault(cwd)
	if err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	// Create the case store alongside the config
	db, err := store.Open(filepath.Dir(written), "")
	if err != nil {
		return fmt.Errorf("initializing case store: %w", err)
	}
	defer db.Close()

	relPath, _ := filepath.Rel(cwd, written)
	fmt.Printf("Initialized casewise config at %s\n", relPath)

	return nil
}
