package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/output"
	"github.com/codemakerai/codemaker-cli/internal/processor"
)

// completeCmd represents the complete command
var completeCmd = &cobra.Command{
	Use:   "complete <file>",
	Short: "Suggest an inline completion at a cursor position",
	Long: `Ask the service for an inline completion at a cursor in a file.

The cursor is either a byte offset (--offset) or a 1-based line and column
(--line, --column). Errors never fail the command: the suggestion is simply
empty, and the reason is logged to stderr.

Examples:
  codemaker complete main.go --line 12 --column 5
  codemaker complete app.py --offset 340 --multiline
  codemaker complete app.py --offset 340 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

var (
	completeOffset    int
	completeLine      int
	completeColumn    int
	completeMultiline bool
)

func init() {
	rootCmd.AddCommand(completeCmd)

	completeCmd.Flags().IntVar(&completeOffset, "offset", -1, "Cursor position as a byte offset")
	completeCmd.Flags().IntVar(&completeLine, "line", 0, "Cursor line (1-based)")
	completeCmd.Flags().IntVar(&completeColumn, "column", 0, "Cursor column (1-based)")
	completeCmd.Flags().BoolVar(&completeMultiline, "multiline", false, "Allow completions spanning several lines")
}

func runComplete(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	offset, err := cursorOffset(cmd, source)
	if err != nil {
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

	req := processor.CompletionRequest{Path: path, Source: source, Offset: offset}
	if cmd.Flags().Changed("multiline") {
		req.Multiline = &completeMultiline
	}

	p := a.newProcessor(client, nil, nil)
	suggestion, err := p.Complete(cmd.Context(), req)
	if err != nil {
		return err
	}
	return writeOutput(cmd, output.CompletionOutput{File: path, Offset: offset, Completion: suggestion})
}

// cursorOffset reads the cursor from --offset or --line/--column.
func cursorOffset(cmd *cobra.Command, source []byte) (int, error) {
	flags := cmd.Flags()
	byOffset := flags.Changed("offset")
	byPosition := flags.Changed("line") || flags.Changed("column")

	switch {
	case byOffset && byPosition:
		return 0, fmt.Errorf("--offset and --line/--column are mutually exclusive")
	case byOffset:
		if completeOffset < 0 || completeOffset > len(source) {
			return 0, fmt.Errorf("--offset %d outside of file (%d bytes)", completeOffset, len(source))
		}
		return completeOffset, nil
	case byPosition:
		if !flags.Changed("line") || !flags.Changed("column") {
			return 0, fmt.Errorf("--line and --column must be given together")
		}
		return processor.OffsetAt(source, completeLine, completeColumn)
	default:
		return 0, fmt.Errorf("cursor required: use --offset or --line and --column")
	}
}
