package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict <path>",
	Short: "Run predictive generation over a file or directory",
	Long: `Send a file, or every supported file below a directory, for predictive
generation. The service prepares suggestions; nothing is written locally.

Traversal and failure handling are the same as 'codemaker process'.

Examples:
  codemaker predict src/
  codemaker predict handler.go`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	j := a.openJournal()
	if j != nil {
		defer j.Close()
	}

	p := a.newProcessor(client, nil, j)
	summary, runErr := p.Predict(cmd.Context(), args[0])
	if summary != nil {
		if err := writeOutput(cmd, summary.Report(nil)); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Files))
	}
	return nil
}
