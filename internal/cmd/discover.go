package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/parser"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover <file>",
	Short: "Show the context files resolved for a file",
	Long: `Resolve the files a source file depends on, the same way generation does
before it registers extended context, and print them without contacting the
service for anything but the discovery itself.

Dependencies are followed breadth-first up to context.depth levels; each file
appears once, even in dependency cycles. The target itself is never listed.

Examples:
  codemaker discover internal/server/handler.go
  codemaker discover src/app.ts --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if _, err := parser.LanguageFromPath(args[0]); err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	p := a.newProcessor(client, nil, nil)
	found, err := p.Discover(cmd.Context(), args[0])
	if err != nil {
		if codemaker.IsUnauthorized(err) {
			a.log.Error("not authorized", "hint", codemaker.UnauthorizedHint)
		}
		return err
	}
	return writeOutput(cmd, found.Report())
}
