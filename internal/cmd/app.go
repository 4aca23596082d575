package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/config"
	"github.com/codemakerai/codemaker-cli/internal/journal"
	"github.com/codemakerai/codemaker-cli/internal/logger"
	"github.com/codemakerai/codemaker-cli/internal/output"
	"github.com/codemakerai/codemaker-cli/internal/processor"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// app is what a command needs after global flags are applied.
type app struct {
	cfg       *config.Config
	configDir string // empty when the project has no .codemaker directory
	settings  processor.Settings
	log       *slog.Logger
}

// loadApp reads the configuration, sets up logging and derives run
// settings.
func loadApp() (*app, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	var cfg *config.Config
	var configDir string
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
		configDir = filepath.Dir(configPath)
	} else {
		cfg, err = config.Load(cwd)
		if dir, findErr := config.FindConfigDir(cwd); findErr == nil {
			configDir = dir
		}
	}
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: logging level: %v", config.ErrInvalidConfig, err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	logger.Init(logCfg)

	settings, err := processor.SettingsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	return &app{
		cfg:       cfg,
		configDir: configDir,
		settings:  settings,
		log:       logger.ForComponent("cli"),
	}, nil
}

// client builds the API client. Commands that talk to the service fail
// early without an API key.
func (a *app) client() (*codemaker.Client, error) {
	if strings.TrimSpace(a.cfg.API.APIKey) == "" {
		return nil, fmt.Errorf("%w: %s", codemaker.ErrUnauthorized, codemaker.UnauthorizedHint)
	}
	return codemaker.NewClient(codemaker.Config{
		Endpoint:  a.cfg.API.Endpoint,
		APIKey:    a.cfg.API.APIKey,
		Timeout:   a.cfg.API.Timeout,
		UserAgent: "codemaker-cli/" + Version,
	})
}

// openJournal opens the run journal of the project. Without a
// .codemaker directory, or when the database cannot be opened, runs are not
// journaled and nil is returned.
func (a *app) openJournal() *journal.Journal {
	if a.configDir == "" {
		return nil
	}
	j, err := journal.Open(a.configDir)
	if err != nil {
		a.log.Warn("run journal unavailable", "error", err)
		return nil
	}
	return j
}

// newProcessor wires a processor for files. j may be nil.
func (a *app) newProcessor(api processor.API, files workspace.Files, j *journal.Journal) *processor.Processor {
	opts := []processor.Option{processor.WithLogger(logger.ForComponent("processor"))}
	if j != nil {
		opts = append(opts, processor.WithJournal(j))
	}
	return processor.New(api, files, a.settings, opts...)
}

// writeOutput renders v in the --format selected on the command line.
func writeOutput(cmd *cobra.Command, v any) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), format, v)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
