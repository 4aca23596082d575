package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/journal"
	"github.com/codemakerai/codemaker-cli/internal/output"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs from the run journal",
	Long: `Display the runs recorded in .codemaker/journal.db, newest first.

Each entry includes the command, the path it ran on, the mode, how many files
were processed and failed, and how long the run took. With --run the outcome
of every file of one run is shown instead.

Flags:
  --limit N      Number of runs to show (default: 10, 0 for all)
  --run ID       Show the files of one run
  --format       Output format: yaml|json (default: yaml)

Examples:
  codemaker history                  # Show last 10 runs
  codemaker history --limit 0        # Show every run
  codemaker history --run 42         # Per-file results of run 42
  codemaker history --format json    # JSON output for parsing`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyRun   int64
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().Int64Var(&historyRun, "run", 0, "Show the files of this run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if a.configDir == "" {
		return fmt.Errorf("no .codemaker directory found (run 'codemaker init')")
	}
	j, err := journal.Open(a.configDir)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer j.Close()

	if historyRun != 0 {
		out, err := runDetail(j, historyRun)
		if err != nil {
			return err
		}
		return writeOutput(cmd, out)
	}

	runs, err := j.Runs(historyLimit)
	if err != nil {
		return err
	}
	out := output.HistoryOutput{Runs: []output.RunEntry{}}
	for _, r := range runs {
		out.Runs = append(out.Runs, runEntry(r))
	}
	return writeOutput(cmd, out)
}

func runEntry(r journal.Run) output.RunEntry {
	return output.RunEntry{
		ID:        r.ID,
		StartedAt: r.StartedAt.Local().Format(time.DateTime),
		Command:   r.Command,
		Path:      r.Path,
		Mode:      r.Mode,
		Processed: r.Processed,
		Failed:    r.Failed,
		Duration:  r.Duration().Round(time.Millisecond).String(),
	}
}

// runDetail renders one journaled run with its per-file results.
func runDetail(j *journal.Journal, id int64) (*output.RunOutput, error) {
	r, err := j.Run(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	records, err := j.Files(id)
	if err != nil {
		return nil, err
	}

	out := &output.RunOutput{
		Path:      r.Path,
		Mode:      r.Mode,
		Processed: r.Processed,
		Failed:    r.Failed,
		Skipped:   r.Skipped,
		Duration:  r.Duration().Round(time.Millisecond).String(),
	}
	for _, rec := range records {
		out.Files = append(out.Files, output.FileResult{
			Path:      rec.Path,
			Status:    string(rec.Status),
			ContextID: rec.ContextID,
			Error:     rec.Error,
		})
	}
	return out, nil
}
