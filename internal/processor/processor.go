// Package processor runs generation workflows over a file or a directory
// tree: read each file, optionally resolve and register extended context,
// call the API and write the result back.
//
// Each file is its own unit of failure. A failing file is logged and
// recorded while its siblings keep going; cancellation of the run's context
// stops everything, and files already written stay written.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/discovery"
	"github.com/codemakerai/codemaker-cli/internal/exclude"
	"github.com/codemakerai/codemaker-cli/internal/journal"
	"github.com/codemakerai/codemaker-cli/internal/parser"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// ErrEmptyOutput is a file's failure when the service returns no content for
// a non-empty file. The file is left untouched.
var ErrEmptyOutput = errors.New("service returned empty output")

// API is the part of the CodeMaker client a processor calls.
type API interface {
	discovery.API
	Process(ctx context.Context, req *codemaker.ProcessRequest) (*codemaker.ProcessResponse, error)
	Predict(ctx context.Context, req *codemaker.PredictRequest) (*codemaker.PredictResponse, error)
	Completion(ctx context.Context, req *codemaker.CompletionRequest) (*codemaker.CompletionResponse, error)
	CreateContext(ctx context.Context, req *codemaker.CreateContextRequest) (*codemaker.CreateContextResponse, error)
	RegisterContext(ctx context.Context, req *codemaker.RegisterContextRequest) (*codemaker.RegisterContextResponse, error)
	AssistantCompletion(ctx context.Context, req *codemaker.AssistantCompletionRequest) (*codemaker.AssistantCompletionResponse, error)
	AssistantCodeCompletion(ctx context.Context, req *codemaker.AssistantCodeCompletionRequest) (*codemaker.AssistantCodeCompletionResponse, error)
	AssistantSpeechCompletion(ctx context.Context, req *codemaker.AssistantSpeechCompletionRequest) (*codemaker.AssistantSpeechCompletionResponse, error)
}

// Processor drives generation runs.
type Processor struct {
	api      API
	files    workspace.Files
	settings Settings
	resolver *discovery.Resolver
	journal  *journal.Journal
	log      *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithJournal records runs in j.
func WithJournal(j *journal.Journal) Option {
	return func(p *Processor) { p.journal = j }
}

// WithLogger sets the logger; the default discards.
func WithLogger(log *slog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// New creates a processor. Nil files means the local filesystem.
func New(api API, files workspace.Files, settings Settings, opts ...Option) *Processor {
	if files == nil {
		files = workspace.OS{}
	}
	p := &Processor{
		api:      api,
		files:    files,
		settings: settings,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resolver = discovery.NewResolver(api, files, discovery.Bounds{
		MaxDepth: settings.ContextDepth,
		MaxSize:  settings.ContextMaxSize,
	}, p.log)
	return p
}

// Request describes one generation run.
type Request struct {
	// Path is a file or a directory.
	Path     string
	Mode     codemaker.Mode
	Modify   codemaker.Modify
	CodePath string
	Prompt   string
	// SourceGraph regenerates each file's dependencies, in code mode,
	// before the file itself.
	SourceGraph bool
	// Command names the run in the journal.
	Command string
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path      string
	Mode      codemaker.Mode
	Status    journal.Status
	ContextID string
	Err       error

	beforeHash string
	afterHash  string
}

// Summary is the outcome of a run.
type Summary struct {
	Path      string
	Mode      codemaker.Mode
	Files     []FileResult
	Processed int
	Failed    int
	Skipped   int
	Duration  time.Duration
	RunID     int64

	started time.Time
}

func (s *Summary) add(res FileResult) {
	s.Files = append(s.Files, res)
	switch res.Status {
	case journal.StatusProcessed:
		s.Processed++
	case journal.StatusFailed:
		s.Failed++
	case journal.StatusSkipped:
		s.Skipped++
	}
}

// run is the state of one invocation.
type run struct {
	req     Request
	summary *Summary
	// visited holds files already handled by source-graph recursion.
	visited map[visitKey]bool
	// single is set when the run targets one file; errors that would abort
	// that file then abort the call.
	single bool
}

// Run processes req.Path, a single file or every supported file below a
// directory. The summary is returned even when the run is cut short.
//
// For a single file an authorization failure is returned as the error; in
// a directory it counts as that file's failure like any other error.
// Cancellation is always returned.
func (p *Processor) Run(ctx context.Context, req Request) (*Summary, error) {
	if req.Mode == "" {
		req.Mode = codemaker.ModeCode
	}
	if req.Modify == "" {
		req.Modify = codemaker.ModifyNone
	}
	if req.Command == "" {
		req.Command = "process"
	}

	return p.execute(ctx, req, func(ctx context.Context, r *run, path string) error {
		if req.SourceGraph {
			return p.processSourceGraph(ctx, r, path, req.Mode, 0)
		}
		res, err := p.processFile(ctx, path, req, req.Mode)
		return p.settle(ctx, r, res, err, r.single)
	})
}

// visitKey identifies a file handled in one mode. A dependency regenerated
// in code mode is still processed when the walk reaches it in another mode.
type visitKey struct {
	path string
	mode codemaker.Mode
}

type visitFunc func(ctx context.Context, r *run, path string) error

// execute resolves the target, journals the run and feeds every file to
// visit.
func (p *Processor) execute(ctx context.Context, req Request, visit visitFunc) (*Summary, error) {
	root, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	r := &run{
		req:     req,
		summary: &Summary{Path: root, Mode: req.Mode, started: time.Now()},
		visited: make(map[visitKey]bool),
		single:  !info.IsDir(),
	}
	p.beginRun(r)
	defer p.finishRun(r)

	if r.single {
		return r.summary, visit(ctx, r, root)
	}

	err = p.walk(ctx, root, func(path string) error {
		return visit(ctx, r, path)
	})
	return r.summary, err
}

// walk calls visit for every supported, non-excluded file below root in
// lexical order. Only an error from visit, or cancellation, stops it.
func (p *Processor) walk(ctx context.Context, root string, visit func(path string) error) error {
	matcher, err := exclude.NewMatcher(root, p.settings.Exclude, p.settings.AutoExclude)
	if err != nil {
		return err
	}
	if auto := matcher.AutoExcluded(); auto != nil {
		for _, dir := range auto.Directories {
			p.log.Debug("auto-excluded directory", "dir", dir, "reason", auto.Reasons[dir])
		}
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			p.log.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if matcher.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !parser.IsSupported(path) || matcher.SkipFile(path) {
			return nil
		}
		return visit(path)
	})
}

// settle classifies the outcome of one file. Success is recorded.
// Cancellation is returned without logging. Authorization failures are
// logged with a hint and returned when abort is set. Everything else is
// logged as the file's failure and swallowed.
func (p *Processor) settle(ctx context.Context, r *run, res FileResult, err error, abort bool) error {
	if err == nil {
		p.record(r, res)
		return nil
	}
	if isCancellation(ctx, err) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	res.Status = journal.StatusFailed
	res.Err = err
	p.record(r, res)

	if codemaker.IsUnauthorized(err) {
		p.log.Error("not authorized", "path", res.Path, "hint", codemaker.UnauthorizedHint)
		if abort {
			return err
		}
		return nil
	}

	p.log.Warn("file failed", "path", res.Path, "mode", res.Mode, "error", err)
	return nil
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

func (p *Processor) record(r *run, res FileResult) {
	r.summary.add(res)

	switch res.Status {
	case journal.StatusProcessed:
		p.log.Info("file processed", "path", res.Path, "mode", res.Mode, "context", res.ContextID != "")
	case journal.StatusSkipped:
		p.log.Debug("file skipped", "path", res.Path, "error", res.Err)
	}

	if p.journal == nil || r.summary.RunID == 0 {
		return
	}
	rec := journal.FileRecord{
		Path:       res.Path,
		Status:     res.Status,
		ContextID:  res.ContextID,
		BeforeHash: res.beforeHash,
		AfterHash:  res.afterHash,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if err := p.journal.RecordFile(r.summary.RunID, rec); err != nil {
		p.log.Warn("journal write failed", "error", err)
	}
}

func (p *Processor) beginRun(r *run) {
	if p.journal == nil {
		return
	}
	id, err := p.journal.BeginRun(r.req.Command, r.summary.Path, r.req.Mode.Flag())
	if err != nil {
		p.log.Warn("journal write failed", "error", err)
		return
	}
	r.summary.RunID = id
}

func (p *Processor) finishRun(r *run) {
	s := r.summary
	s.Duration = time.Since(s.started)
	if p.journal == nil || s.RunID == 0 {
		return
	}
	if err := p.journal.FinishRun(s.RunID, s.Processed, s.Failed, s.Skipped); err != nil {
		p.log.Warn("journal write failed", "error", err)
	}
}
