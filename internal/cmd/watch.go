package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/processor"
	"github.com/codemakerai/codemaker-cli/internal/watcher"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "React to saved files with predictive generation or syntax fixes",
	Long: `Watch a directory (default: current) and act on every supported file when
it is saved.

  predictive   Run predictive generation for the saved file
  autofix      Fix syntax errors in the saved file and write it back; files
               that parse cleanly are left alone

Both default to watch.predictive and watch.autofix in the config; the flags
override them. Saves arriving within watch.debounce of each other are handled
as one batch. Writes made by autofix are recognized and do not trigger another
round. Stop with Ctrl-C.

Examples:
  codemaker watch
  codemaker watch src/ --autofix
  codemaker watch --predictive=false --autofix`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var (
	watchPredictive bool
	watchAutofix    bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchPredictive, "predictive", false, "Run predictive generation on save")
	watchCmd.Flags().BoolVar(&watchAutofix, "autofix", false, "Fix syntax errors on save")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	if info, err := os.Stat(root); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	predictive := a.cfg.Watch.Predictive
	if cmd.Flags().Changed("predictive") {
		predictive = watchPredictive
	}
	autofix := a.cfg.Watch.Autofix
	if cmd.Flags().Changed("autofix") {
		autofix = watchAutofix
	}
	if !predictive && !autofix {
		return errors.New("nothing to do: enable --predictive or --autofix (or watch.* in config)")
	}

	client, err := a.client()
	if err != nil {
		return err
	}
	j := a.openJournal()
	if j != nil {
		defer j.Close()
	}

	writes, err := watcher.NewWrites(0, j)
	if err != nil {
		return err
	}
	p := a.newProcessor(client, writes.Files(workspace.OS{}), j)

	wcfg := watcher.DefaultConfig()
	if a.cfg.Watch.Debounce > 0 {
		wcfg.Debounce = a.cfg.Watch.Debounce
	}
	wcfg.Ignore = append(append([]string(nil), a.cfg.Watch.Ignore...), a.settings.Exclude...)
	wcfg.AutoExclude = a.settings.AutoExclude

	handler := func(ctx context.Context, paths []string) {
		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}
			if predictive {
				if _, err := p.Predict(ctx, path); err != nil && ctx.Err() == nil {
					a.log.Warn("predictive generation failed", "path", path, "error", err)
				}
			}
			if autofix {
				broken, err := p.HasSyntaxErrors(ctx, path)
				if err != nil {
					a.log.Debug("syntax check failed", "path", path, "error", err)
				}
				if err == nil && !broken {
					continue
				}
				_, err = p.Run(ctx, processor.Request{
					Path:    path,
					Mode:    codemaker.ModeFixSyntax,
					Modify:  codemaker.ModifyNone,
					Command: "watch",
				})
				if err != nil && ctx.Err() == nil {
					a.log.Warn("syntax fix failed", "path", path, "error", err)
				}
			}
		}
	}

	w, err := watcher.New(root, wcfg, writes, handler, a.log)
	if err != nil {
		return err
	}

	a.log.Debug("watch handlers", "root", w.Root(), "predictive", predictive, "autofix", autofix)
	return w.Run(cmd.Context())
}
