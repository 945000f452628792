package domain

import "context"

// AutomationRequest captures user intent originating from the CLI.
type AutomationRequest struct {
	Context         context.Context
	Instruction     string
	ModelOverride   string
	Verify          bool
	Voice           bool
	AutoApprove     bool
	PreviewOnly     bool
	CopyToClipboard bool
	Debug           bool
}

// AutomationResponse is the canonical response propagated back to the CLI.
type AutomationResponse struct {
	RunID              string
	Instruction        string
	Script             string
	ModelUsed          string
	RiskAssessment     RiskAssessment
	ExecutionResult    *ExecutionResult
	Verification       *Verification
	ContextInformation ContextSnapshot
	ReusedSolution     bool
}

// ExecutionResult wraps details from the osascript runner.
type ExecutionResult struct {
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	Err        error
	// Guidance carries operator-facing remediation text, set when the
	// failure is a macOS automation permission denial.
	Guidance string
}

// Verification is the model's verdict on whether a run achieved the
// requested outcome.
type Verification struct {
	Passed   bool
	Feedback string
}

// AgentService exposes the use-case boundary for handling an instruction.
type AgentService interface {
	Run(AutomationRequest) (AutomationResponse, error)
}
