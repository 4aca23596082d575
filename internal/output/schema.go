package output

// RunOutput summarizes one process, generate, edit or predict invocation.
type RunOutput struct {
	Path      string       `yaml:"path" json:"path"`
	Mode      string       `yaml:"mode" json:"mode"`
	DryRun    bool         `yaml:"dry_run,omitempty" json:"dry_run,omitempty"`
	Processed int          `yaml:"processed" json:"processed"`
	Failed    int          `yaml:"failed" json:"failed"`
	Skipped   int          `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	Duration  string       `yaml:"duration" json:"duration"`
	Files     []FileResult `yaml:"files,omitempty" json:"files,omitempty"`
}

// FileResult is the outcome for a single file of a run.
type FileResult struct {
	Path      string `yaml:"path" json:"path"`
	Status    string `yaml:"status" json:"status"`
	ContextID string `yaml:"context_id,omitempty" json:"context_id,omitempty"`
	Error     string `yaml:"error,omitempty" json:"error,omitempty"`
	Diff      string `yaml:"diff,omitempty" json:"diff,omitempty"`
}

// DiscoverOutput lists the context files resolved for a source file.
type DiscoverOutput struct {
	File     string              `yaml:"file" json:"file"`
	Language string              `yaml:"language" json:"language"`
	Depth    int                 `yaml:"depth" json:"depth"`
	Contexts []DiscoveredContext `yaml:"contexts" json:"contexts"`
}

// DiscoveredContext is one file of a resolved context.
type DiscoveredContext struct {
	Path     string `yaml:"path" json:"path"`
	Language string `yaml:"language" json:"language"`
	Bytes    int    `yaml:"bytes" json:"bytes"`
}

// OutlineOutput lists the declarations of a file with their code paths.
type OutlineOutput struct {
	File     string        `yaml:"file" json:"file"`
	Language string        `yaml:"language" json:"language"`
	Symbols  []SymbolEntry `yaml:"symbols" json:"symbols"`
}

// SymbolEntry is one outlined declaration.
type SymbolEntry struct {
	CodePath string `yaml:"code_path" json:"code_path"`
	Kind     string `yaml:"kind" json:"kind"`
	Lines    string `yaml:"lines" json:"lines"`
}

// CompletionOutput is the result of an inline completion request.
type CompletionOutput struct {
	File       string `yaml:"file" json:"file"`
	Offset     int    `yaml:"offset" json:"offset"`
	Completion string `yaml:"completion" json:"completion"`
}

// ModelsOutput lists the models the service offers.
type ModelsOutput struct {
	Models []ModelEntry `yaml:"models" json:"models"`
}

// ModelEntry is one available model.
type ModelEntry struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// AssistantOutput is the reply of an assistant request.
type AssistantOutput struct {
	Message   string `yaml:"message" json:"message"`
	File      string `yaml:"file,omitempty" json:"file,omitempty"`
	Applied   bool   `yaml:"applied,omitempty" json:"applied,omitempty"`
	AudioFile string `yaml:"audio_file,omitempty" json:"audio_file,omitempty"`
}

// HistoryOutput lists recent runs from the journal.
type HistoryOutput struct {
	Runs []RunEntry `yaml:"runs" json:"runs"`
}

// RunEntry is one journaled run.
type RunEntry struct {
	ID        int64  `yaml:"id" json:"id"`
	StartedAt string `yaml:"started_at" json:"started_at"`
	Command   string `yaml:"command" json:"command"`
	Path      string `yaml:"path" json:"path"`
	Mode      string `yaml:"mode,omitempty" json:"mode,omitempty"`
	Processed int    `yaml:"processed" json:"processed"`
	Failed    int    `yaml:"failed" json:"failed"`
	Duration  string `yaml:"duration" json:"duration"`
}
