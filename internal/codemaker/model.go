package codemaker

// Input carries source text.
type Input struct {
	Source string `json:"source"`
}

// Output carries generated source text.
type Output struct {
	Source string `json:"source"`
}

// Options are the optional knobs of a generation request.
type Options struct {
	Modify                     Modify       `json:"modify,omitempty"`
	CodePath                   string       `json:"codePath,omitempty"`
	Prompt                     string       `json:"prompt,omitempty"`
	DetectSyntaxErrors         bool         `json:"detectSyntaxErrors,omitempty"`
	LanguageCode               LanguageCode `json:"languageCode,omitempty"`
	ContextID                  string       `json:"contextId,omitempty"`
	Model                      string       `json:"model,omitempty"`
	OverrideIndent             *int         `json:"overrideIndent,omitempty"`
	MinimalLinesLength         *int         `json:"minimalLinesLength,omitempty"`
	Visibility                 Visibility   `json:"visibility,omitempty"`
	AllowMultiLineAutocomplete bool         `json:"allowMultiLineAutocomplete,omitempty"`
}

// Process is the shared body of process, predict and completion requests.
type Process struct {
	Mode     Mode     `json:"mode,omitempty"`
	Language string   `json:"language"`
	Input    Input    `json:"input"`
	Path     string   `json:"path,omitempty"`
	Options  *Options `json:"options,omitempty"`
}

// ProcessRequest is the body of a process call.
type ProcessRequest struct {
	Process Process `json:"process"`
}

// ProcessResponse holds the rewritten file.
type ProcessResponse struct {
	Output Output `json:"output"`
}

// PredictRequest is the body of a predict call.
type PredictRequest struct {
	Process Process `json:"process"`
}

// PredictResponse is empty; predictions are prepared server-side.
type PredictResponse struct{}

// CompletionRequest is the body of a completion call. The cursor is
// given by Options.CodePath as an "@offset" locator.
type CompletionRequest struct {
	Process Process `json:"process"`
}

// CompletionResponse holds the suggested insertion.
type CompletionResponse struct {
	Output Output `json:"output"`
}

// Context is one file offered to the server as background for generation.
type Context struct {
	Language string `json:"language"`
	Input    Input  `json:"input"`
	Path     string `json:"path"`
}

// DiscoverContextRequest asks for the dependencies of one file.
type DiscoverContextRequest struct {
	Context Context `json:"context"`
}

// RequiredContext is a dependency reference as written in the analyzed
// file, usually relative to that file's directory.
type RequiredContext struct {
	Path string `json:"path"`
}

// DiscoverContextResponse lists a file's dependency references.
type DiscoverContextResponse struct {
	Contexts           []RequiredContext `json:"contexts"`
	RequiresProcessing bool              `json:"requiresProcessing"`
}

// Paths returns the referenced paths in response order.
func (r *DiscoverContextResponse) Paths() []string {
	paths := make([]string, 0, len(r.Contexts))
	for _, c := range r.Contexts {
		paths = append(paths, c.Path)
	}
	return paths
}

// CreateContextRequest is the body of a create-context call.
type CreateContextRequest struct{}

// CreateContextResponse carries the id of the new context.
type CreateContextResponse struct {
	ID string `json:"id"`
}

// RegisterContextRequest attaches files to context ID.
type RegisterContextRequest struct {
	ID       string    `json:"id"`
	Contexts []Context `json:"contexts"`
}

// RegisterContextResponse is empty.
type RegisterContextResponse struct{}

// AssistantCompletionRequest is a chat message to the assistant.
type AssistantCompletionRequest struct {
	Message string   `json:"message"`
	Options *Options `json:"options,omitempty"`
}

// AssistantCompletionResponse is the assistant's reply.
type AssistantCompletionResponse struct {
	Message string `json:"message"`
}

// AssistantCodeCompletionRequest is a message about one source file.
type AssistantCodeCompletionRequest struct {
	Message  string   `json:"message"`
	Language string   `json:"language"`
	Input    Input    `json:"input"`
	Options  *Options `json:"options,omitempty"`
}

// AssistantCodeCompletionResponse is the reply plus a proposed rewrite of
// the file. An empty Output.Source means no rewrite.
type AssistantCodeCompletionResponse struct {
	Message string `json:"message"`
	Output  Output `json:"output"`
}

// AssistantSpeechCompletionRequest is a chat message answered with speech.
type AssistantSpeechCompletionRequest struct {
	Message string   `json:"message"`
	Options *Options `json:"options,omitempty"`
}

// Audio holds encoded speech. Data is base64 on the wire.
type Audio struct {
	Data []byte `json:"data"`
}

// AssistantSpeechCompletionResponse is the reply and its audio.
type AssistantSpeechCompletionResponse struct {
	Message string `json:"message"`
	Audio   Audio  `json:"audio"`
}

// ListModelsRequest is the body of a list-models call.
type ListModelsRequest struct{}

// Model is a generation model selectable through Options.Model.
type Model struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// ListModelsResponse lists the available models.
type ListModelsResponse struct {
	Models []Model `json:"models"`
}
