package cmd

import (
	"github.com/spf13/cobra"
)

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "List the code paths of the declarations in a file",
	Long: `Parse a file locally and list its declarations with the code path each
one is addressed by in --code-path and --entity.

Examples:
  codemaker outline service.py
  codemaker outline Server.java --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	p := a.newProcessor(nil, nil, nil)
	outline, err := p.Outline(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeOutput(cmd, outline)
}
