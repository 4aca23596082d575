package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/journal"
	"github.com/codemakerai/codemaker-cli/internal/processor"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <path>",
	Short: "Run a file or every supported file in a directory through the service",
	Long: `Send a source file, or every supported file below a directory, to the
CodeMaker service and write the results back.

Files are processed one at a time. A file that fails is reported and the rest
carry on; interrupting the command stops after the file in flight, and files
already written stay written. Hidden directories, dependency directories
(node_modules, vendor, target, ...) and --exclude globs are skipped.

Modes:
  code          Generate missing implementations (default)
  inline-code   Complete code inline
  edit-code     Apply --prompt to the file
  document      Generate documentation
  fix-syntax    Fix syntax errors

In code, edit-code and inline-code modes the files each target depends on are
discovered and sent along as context, unless context.extended is off.

With --source-graph the dependencies of each file are regenerated in code mode
first, recursively, each file at most once per mode. Dependencies are
regenerated whole: --modify, --code-path and --prompt apply only to the files
the command targets. A dependency the directory walk reaches later is still
processed in --mode.

Examples:
  codemaker process src/
  codemaker process app.py --mode document --visibility public
  codemaker process svc.go --entity Server.Start --modify replace
  codemaker process lib/ --source-graph --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithMode(cmd, args[0], &processFlags, "", "process")
	},
}

var processFlags runFlags

func init() {
	rootCmd.AddCommand(processCmd)
	processFlags.bind(processCmd, true)
}

// runFlags are the flags shared by process, generate and edit.
type runFlags struct {
	mode           string
	modify         string
	codePath       string
	entity         string
	prompt         string
	sourceGraph    bool
	dryRun         bool
	outputLanguage string
	indent         int
	minLines       int
	visibility     string
	model          string
	exclude        []string
	noContext      bool
}

func (f *runFlags) bind(cmd *cobra.Command, withMode bool) {
	flags := cmd.Flags()
	if withMode {
		flags.StringVar(&f.mode, "mode", "code", "Processing mode (code|inline-code|edit-code|document|fix-syntax)")
	}
	flags.StringVar(&f.modify, "modify", "none", "How existing code is changed (none|replace|insert)")
	flags.StringVar(&f.codePath, "code-path", "", "Restrict processing to one declaration, e.g. Greeter.greet")
	flags.StringVar(&f.entity, "entity", "", "Declaration name to resolve into a code path (single file only)")
	flags.StringVar(&f.prompt, "prompt", "", "Instruction for edit-code mode")
	flags.BoolVar(&f.sourceGraph, "source-graph", false, "Regenerate dependencies in code mode before each file")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Print unified diffs instead of writing files")
	flags.StringVar(&f.outputLanguage, "output-language", "", "Language of generated documentation (EN, DE, JA, ...)")
	flags.IntVar(&f.indent, "indent", 0, "Override indentation width")
	flags.IntVar(&f.minLines, "min-lines", 0, "Minimal function length in lines to document")
	flags.StringVar(&f.visibility, "visibility", "", "Document all declarations or only public ones (all|public)")
	flags.StringVar(&f.model, "model", "", "Model to use")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "Additional glob patterns to skip (repeatable)")
	flags.BoolVar(&f.noContext, "no-context", false, "Do not send extended context")
}

// applySettings overrides settings with the flags set on cmd.
func (f *runFlags) applySettings(cmd *cobra.Command, s *processor.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("output-language") {
		lang, err := codemaker.ParseLanguageCode(f.outputLanguage)
		if err != nil {
			return err
		}
		s.OutputLanguage = lang
	}
	if flags.Changed("indent") {
		s.Indent = f.indent
	}
	if flags.Changed("min-lines") {
		s.MinimalLinesLength = f.minLines
	}
	if flags.Changed("visibility") {
		v, err := codemaker.ParseVisibility(f.visibility)
		if err != nil {
			return err
		}
		s.Visibility = v
	}
	if flags.Changed("model") {
		s.Model = f.model
	}
	if len(f.exclude) > 0 {
		s.Exclude = append(append([]string(nil), s.Exclude...), f.exclude...)
	}
	if f.noContext {
		s.ExtendedContext = false
	}
	return nil
}

// request builds the processor request for path from the flags. mode
// overrides --mode when set.
func (f *runFlags) request(path string, mode codemaker.Mode, command string) (processor.Request, error) {
	req := processor.Request{
		Path:        path,
		Mode:        mode,
		CodePath:    f.codePath,
		Prompt:      f.prompt,
		SourceGraph: f.sourceGraph,
		Command:     command,
	}

	var err error
	if req.Mode == "" {
		if req.Mode, err = codemaker.ParseMode(f.mode); err != nil {
			return req, err
		}
	}
	if req.Modify, err = codemaker.ParseModify(f.modify); err != nil {
		return req, err
	}
	if req.Mode == codemaker.ModeEditCode && req.Prompt == "" {
		return req, fmt.Errorf("--prompt is required for edit-code mode")
	}
	if f.entity != "" && f.codePath != "" {
		return req, fmt.Errorf("--entity and --code-path are mutually exclusive")
	}
	return req, nil
}

// runWithMode executes one processor run and prints its summary. An empty
// mode takes --mode. The command fails when any file failed.
func runWithMode(cmd *cobra.Command, path string, flags *runFlags, mode codemaker.Mode, command string) error {
	req, err := flags.request(path, mode, command)
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := flags.applySettings(cmd, &a.settings); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	var files workspace.Files = workspace.OS{}
	var dry *workspace.DryRun
	var j *journal.Journal
	if flags.dryRun {
		dry = workspace.NewDryRun(files)
		files = dry
	} else if j = a.openJournal(); j != nil {
		defer j.Close()
	}

	p := a.newProcessor(client, files, j)

	ctx := cmd.Context()
	if flags.entity != "" {
		if req.CodePath, err = p.ResolveCodePath(ctx, path, flags.entity); err != nil {
			return err
		}
	}

	summary, runErr := p.Run(ctx, req)
	if summary != nil {
		if err := writeOutput(cmd, summary.Report(dry)); err != nil {
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
