package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
)

// generateCmd is a shorthand for process with a fixed mode
var generateCmd = &cobra.Command{
	Use:   "generate <code|docs|fix-syntax> <path>",
	Short: "Generate code, documentation or syntax fixes for a file or directory",
	Long: `Shorthand for 'codemaker process --mode ...'.

  code         Generate missing implementations
  docs         Generate documentation
  fix-syntax   Fix syntax errors

Examples:
  codemaker generate code internal/
  codemaker generate docs api.py --visibility public
  codemaker generate fix-syntax broken.ts`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

var generateFlags runFlags

func init() {
	rootCmd.AddCommand(generateCmd)
	generateFlags.bind(generateCmd, false)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	mode, err := generateMode(args[0])
	if err != nil {
		return err
	}
	return runWithMode(cmd, args[1], &generateFlags, mode, "generate")
}

func generateMode(kind string) (codemaker.Mode, error) {
	switch kind {
	case "code":
		return codemaker.ModeCode, nil
	case "docs", "doc", "documentation":
		return codemaker.ModeDocument, nil
	case "fix-syntax", "fix":
		return codemaker.ModeFixSyntax, nil
	default:
		return "", fmt.Errorf("unknown generation kind %q (expected code, docs or fix-syntax)", kind)
	}
}
