package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/config"
	"github.com/codemakerai/codemaker-cli/internal/journal"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .codemaker/config.yaml and the run journal",
	Long: `Initialize the .codemaker directory in the current directory.

This writes a config.yaml holding the defaults for every setting and creates
journal.db, which records each run and the outcome per file. The API key is
best kept out of the config file: set CODEMAKER_API_KEY or put it in .env.

Examples:
  codemaker init          # Initialize in current directory
  codemaker init --force  # Overwrite an existing config.yaml`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configFile, err := config.SaveDefault(cwd, initForce)
	if err != nil {
		return err
	}

	j, err := journal.Open(filepath.Dir(configFile))
	if err != nil {
		return fmt.Errorf("initializing journal: %w", err)
	}
	defer j.Close()

	relPath, _ := filepath.Rel(cwd, configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized codemaker at %s\n", relPath)
	return nil
}
