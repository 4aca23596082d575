package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
)

// editCmd is a shorthand for process --mode edit-code
var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Edit a file following a natural-language prompt",
	Long: `Shorthand for 'codemaker process --mode edit-code --prompt ...'.

Examples:
  codemaker edit server.go --prompt "return 404 for unknown routes"
  codemaker edit util.py --entity parse --prompt "accept bytes" --modify replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithMode(cmd, args[0], &editFlags, codemaker.ModeEditCode, "edit")
	},
}

var editFlags runFlags

func init() {
	rootCmd.AddCommand(editCmd)
	editFlags.bind(editCmd, false)
	_ = editCmd.MarkFlagRequired("prompt")
}
