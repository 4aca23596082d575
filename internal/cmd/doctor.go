package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/journal"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, credentials and the run journal",
	Long: `Run health checks on the local setup.

Checks:
  - Configuration loads and validates
  - An API key is configured
  - The service accepts the key (skipped with --offline)
  - The run journal passes SQLite's integrity check

Examples:
  codemaker doctor            # Run all checks
  codemaker doctor --offline  # Skip the service check`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorOffline bool

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false, "Skip checks that contact the service")
}

type doctorResult struct {
	name   string
	passed bool
	skip   bool
	detail string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# codemaker doctor")

	results := doctorChecks(cmd)
	issues := 0
	for _, r := range results {
		switch {
		case r.skip:
			fmt.Fprintf(out, "#   - %s: skipped (%s)\n", r.name, r.detail)
		case r.passed:
			fmt.Fprintf(out, "#   ✓ %s\n", r.name)
		default:
			issues++
			fmt.Fprintf(out, "#   ✗ %s: %s\n", r.name, r.detail)
		}
	}

	fmt.Fprintln(out, "#")
	if issues == 0 {
		fmt.Fprintln(out, "# Summary: All checks passed ✓")
		return nil
	}
	fmt.Fprintf(out, "# Summary: %d issue(s) found\n", issues)
	return fmt.Errorf("%d doctor check(s) failed", issues)
}

func doctorChecks(cmd *cobra.Command) []doctorResult {
	a, err := loadApp()
	if err != nil {
		return []doctorResult{{name: "configuration", detail: err.Error()}}
	}
	results := []doctorResult{{name: "configuration", passed: true}}

	results = append(results, checkAPIKey(a))
	if doctorOffline {
		results = append(results, doctorResult{name: "service", skip: true, detail: "--offline"})
	} else {
		results = append(results, checkService(cmd, a))
	}
	return append(results, checkJournal(a))
}

func checkAPIKey(a *app) doctorResult {
	r := doctorResult{name: "api key"}
	if strings.TrimSpace(a.cfg.API.APIKey) == "" {
		r.detail = codemaker.UnauthorizedHint
		return r
	}
	r.passed = true
	return r
}

// checkService lists models, the cheapest authenticated call.
func checkService(cmd *cobra.Command, a *app) doctorResult {
	r := doctorResult{name: "service"}
	client, err := a.client()
	if err != nil {
		r.skip = true
		r.detail = "no api key"
		return r
	}
	r.name = "service " + client.Endpoint()
	if _, err := client.ListModels(cmd.Context(), &codemaker.ListModelsRequest{}); err != nil {
		r.detail = err.Error()
		return r
	}
	r.passed = true
	return r
}

func checkJournal(a *app) doctorResult {
	r := doctorResult{name: "run journal"}
	if a.configDir == "" {
		r.skip = true
		r.detail = "no .codemaker directory"
		return r
	}
	if _, err := os.Stat(a.configDir); err != nil {
		r.detail = err.Error()
		return r
	}
	j, err := journal.Open(a.configDir)
	if err != nil {
		r.detail = err.Error()
		return r
	}
	defer j.Close()
	if err := j.Integrity(); err != nil {
		r.detail = err.Error()
		return r
	}
	r.passed = true
	return r
}
