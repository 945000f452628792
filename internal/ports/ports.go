// Package ports defines the interfaces between the application core and the
// infrastructure adapters. The services depend on these abstractions rather
// than on concrete HTTP clients, databases, or subprocess wrappers.
package ports

import (
	"context"

	"github.com/doeshing/osai-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.osai/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ContextCollector gathers macOS environment data (OS version, frontmost
// application, running applications) to enrich generation prompts.
type ContextCollector interface {
	Collect(ctx context.Context, cfg domain.Config) (domain.ContextSnapshot, error)
}

// ProviderFactory builds AI provider instances based on model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// Provider defines the text-generation capability used for both script
// generation and outcome verification. Each implementation wraps a specific
// AI service API.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Complete(context.Context, CompletionRequest) (CompletionResponse, error)
}

// CompletionRequest carries pre-rendered chat messages to a provider.
type CompletionRequest struct {
	Messages []domain.PromptMessage
	Debug    bool
}

// CompletionResponse contains the raw model reply and the extracted script
// body (markdown fences stripped).
type CompletionResponse struct {
	Script string
	Reply  string
}

// SecurityService evaluates generated scripts against guardrail rules.
type SecurityService interface {
	Evaluate(script string) (domain.RiskAssessment, error)
}

// ScriptRunner executes AppleScript source through the OS scripting bridge.
type ScriptRunner interface {
	Run(ctx context.Context, script string) (domain.ExecutionResult, error)
}

// SolutionStore persists solution records and answers recall queries.
type SolutionStore interface {
	Save(domain.SolutionRecord) error
	Records(limit int, search string) ([]domain.SolutionRecord, error)
	// LatestSuccessful returns the newest executed, successful, and not
	// verified-failed solution for the exact instruction, or ok=false.
	LatestSuccessful(instruction string) (domain.SolutionRecord, bool, error)
	Stats() (domain.SolutionStats, error)
	ExportJSON(dest string) error
	Clear() error
	Prune(days int) (int, error)
	Path() string
}

// Speaker voices a short text response through the system speech synthesizer.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Enabled() bool
}

// Transcriber converts a recorded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Available() bool
}

// ApprovalPrompter handles interactive confirmation before running a script.
type ApprovalPrompter interface {
	Approve(action domain.GuardrailAction, level domain.RiskLevel, script string, reasons []string) (bool, error)
	Enabled() bool
}

// Clipboard copies generated scripts to the system clipboard.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
