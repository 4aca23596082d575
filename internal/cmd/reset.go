package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/journal"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the run journal",
	Long: `Remove every recorded run from .codemaker/journal.db.

Clearing the journal also forgets which content codemaker wrote, so a running
watcher may act once more on files it rewrote earlier.

Modes:
  codemaker reset           # Clear all runs
  codemaker reset --hard    # Delete the database file entirely

Examples:
  codemaker reset                 # Ask, then clear
  codemaker reset --dry-run       # Show what would be cleared
  codemaker reset --hard --force  # Delete without asking`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var (
	resetForce  bool // Skip confirmation
	resetHard   bool // Delete database file entirely
	resetDryRun bool // Show what would happen
)

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	resetCmd.Flags().BoolVar(&resetHard, "hard", false, "Delete the database file entirely (requires --force)")
	resetCmd.Flags().BoolVar(&resetDryRun, "dry-run", false, "Show what would be done without making changes")
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if a.configDir == "" {
		return fmt.Errorf("codemaker not initialized: run 'codemaker init' first")
	}

	j, err := journal.Open(a.configDir)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	runs, err := j.Runs(0)
	if err != nil {
		j.Close()
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# codemaker reset")
	fmt.Fprintf(out, "Journal: %s\n", j.Path())
	fmt.Fprintf(out, "Runs: %d\n", len(runs))
	if resetHard {
		fmt.Fprintln(out, "Mode: --hard (delete database file)")
	} else {
		fmt.Fprintln(out, "Mode: clear all runs")
	}

	if resetDryRun {
		j.Close()
		fmt.Fprintln(out, "[dry-run] No changes made")
		return nil
	}
	if resetHard && !resetForce {
		j.Close()
		return fmt.Errorf("--hard requires --force flag to confirm deletion")
	}

	if !resetForce {
		fmt.Fprint(out, "Continue? [y/N] ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			j.Close()
			fmt.Fprintln(out, "Reset cancelled")
			return nil
		}
	}

	if resetHard {
		path := j.Path()
		j.Close()
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete %s: %w", p, err)
			}
		}
		fmt.Fprintln(out, "Journal deleted")
		return nil
	}

	defer j.Close()
	if err := j.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Journal cleared")
	return nil
}
