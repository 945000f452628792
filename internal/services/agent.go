package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/ports"
)

// Agent orchestrates the instruction lifecycle end-to-end: collect context,
// recall past solutions, generate AppleScript, evaluate it, execute it,
// optionally verify the outcome, and record the attempt.
type Agent struct {
	ConfigProvider   ports.ConfigProvider
	ContextCollector ports.ContextCollector
	ProviderFactory  ports.ProviderFactory
	Security         ports.SecurityService
	Runner           ports.ScriptRunner
	Store            ports.SolutionStore
	Speaker          ports.Speaker
	Prompter         ports.ApprovalPrompter
	Clipboard        ports.Clipboard
	Logger           ports.Logger
}

// Run processes a single natural-language instruction.
func (a *Agent) Run(req domain.AutomationRequest) (domain.AutomationResponse, error) {
	if a.ConfigProvider == nil || a.ContextCollector == nil || a.ProviderFactory == nil ||
		a.Security == nil || a.Runner == nil || a.Store == nil || a.Logger == nil {
		return domain.AutomationResponse{}, errors.New("services.Agent dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	resp := domain.AutomationResponse{
		RunID:       uuid.NewString(),
		Instruction: req.Instruction,
	}

	cfg, err := a.ConfigProvider.Load(ctx)
	if err != nil {
		return resp, fmt.Errorf("load config: %w", err)
	}

	snapshot, err := a.ContextCollector.Collect(ctx, cfg)
	if err != nil {
		a.Logger.Warn("context collection failed", map[string]interface{}{"error": err.Error()})
		snapshot = domain.ContextSnapshot{}
	}
	resp.ContextInformation = snapshot

	model, err := pickModel(cfg, req.ModelOverride)
	if err != nil {
		return resp, err
	}
	resp.ModelUsed = model.Name

	previousScript := a.recallSolution(req.Instruction)
	resp.ReusedSolution = previousScript != ""

	script, err := a.generateScript(ctx, model, req, snapshot, previousScript)
	if err != nil {
		a.conclude(ctx, req, &resp, err.Error())
		return resp, err
	}
	resp.Script = script

	if req.CopyToClipboard && a.Clipboard != nil && a.Clipboard.Enabled() {
		if err := a.Clipboard.Copy(script); err != nil {
			a.Logger.Warn("clipboard copy failed", map[string]interface{}{"error": err.Error()})
		}
	}

	risk, err := a.Security.Evaluate(script)
	if err != nil {
		a.conclude(ctx, req, &resp, "guardrail evaluate: "+err.Error())
		return resp, fmt.Errorf("guardrail evaluate: %w", err)
	}
	resp.RiskAssessment = risk

	shouldExecute, err := a.decideExecution(req, cfg, risk, script)
	if err != nil {
		a.conclude(ctx, req, &resp, err.Error())
		return resp, err
	}
	if !shouldExecute {
		a.conclude(ctx, req, &resp, "")
		return resp, nil
	}

	result, execErr := a.Runner.Run(ctx, script)
	resp.ExecutionResult = &result

	if execErr == nil && req.Verify {
		resp.Verification = a.verifyOutcome(ctx, model, req.Instruction, script, &result)
	}

	a.conclude(ctx, req, &resp, executionErrorText(&result, execErr))
	if execErr != nil {
		return resp, fmt.Errorf("execute script: %w", execErr)
	}
	return resp, nil
}

func (a *Agent) generateScript(ctx context.Context, model domain.ModelDefinition, req domain.AutomationRequest, snapshot domain.ContextSnapshot, previousScript string) (string, error) {
	provider, err := a.ProviderFactory.ForModel(model)
	if err != nil {
		return "", fmt.Errorf("provider init: %w", err)
	}

	messages, err := generationMessages(model, req.Instruction, snapshot, previousScript)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	a.Logger.Info("calling provider", map[string]interface{}{
		"provider": provider.Name(),
		"model":    model.ModelID,
	})

	completion, err := provider.Complete(ctx, ports.CompletionRequest{Messages: messages, Debug: req.Debug})
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}
	if completion.Script == "" {
		return "", errors.New("provider returned an empty script")
	}
	return completion.Script, nil
}

// verifyOutcome issues the single additional model call behind --verify.
// Verification trouble never fails the run; it degrades to a failed verdict
// with the error as feedback.
func (a *Agent) verifyOutcome(ctx context.Context, model domain.ModelDefinition, instruction, script string, result *domain.ExecutionResult) *domain.Verification {
	provider, err := a.ProviderFactory.ForModel(model)
	if err != nil {
		return &domain.Verification{Passed: false, Feedback: "verification unavailable: " + err.Error()}
	}

	completion, err := provider.Complete(ctx, ports.CompletionRequest{
		Messages: verificationMessages(instruction, script, result),
	})
	if err != nil {
		a.Logger.Warn("verification call failed", map[string]interface{}{"error": err.Error()})
		return &domain.Verification{Passed: false, Feedback: "verification call failed: " + err.Error()}
	}

	verdict := parseVerdict(completion.Reply)
	return &verdict
}

func (a *Agent) decideExecution(req domain.AutomationRequest, cfg domain.Config, risk domain.RiskAssessment, script string) (bool, error) {
	if req.PreviewOnly {
		return false, nil
	}

	switch risk.Action {
	case domain.ActionBlock:
		return false, fmt.Errorf("script blocked by guardrail: %s", firstReason(risk))
	case domain.ActionPreviewOnly:
		return false, nil
	case domain.ActionAllow:
		if req.AutoApprove || cfg.Preferences.AutoApprove {
			return true, nil
		}
		if !cfg.Execution.ConfirmBeforeExecute {
			return true, nil
		}
		if a.Prompter == nil || !a.Prompter.Enabled() {
			return false, nil
		}
		return a.Prompter.Approve(risk.Action, risk.Level, script, risk.Reasons)
	case domain.ActionConfirm, domain.ActionExplicitConfirm:
		// Risky scripts always prompt, regardless of auto-approve.
		if a.Prompter == nil || !a.Prompter.Enabled() {
			return false, nil
		}
		return a.Prompter.Approve(risk.Action, risk.Level, script, risk.Reasons)
	default:
		return false, nil
	}
}

// conclude records the attempt and voices the outcome. It runs exactly once
// per Run invocation, on every path that produced a run id.
func (a *Agent) conclude(ctx context.Context, req domain.AutomationRequest, resp *domain.AutomationResponse, errText string) {
	record := domain.SolutionRecord{
		RunID:       resp.RunID,
		Timestamp:   time.Now(),
		Instruction: resp.Instruction,
		Script:      resp.Script,
		Model:       resp.ModelUsed,
		ErrorText:   errText,
	}
	if result := resp.ExecutionResult; result != nil {
		record.Executed = true
		record.Success = result.Err == nil
		record.DurationMS = result.DurationMS
	}
	if v := resp.Verification; v != nil {
		passed := v.Passed
		record.Verified = &passed
		record.Feedback = v.Feedback
	}

	if err := a.Store.Save(record); err != nil {
		a.Logger.Error("failed to record attempt", err, map[string]interface{}{"run_id": resp.RunID})
	}

	if req.Voice && a.Speaker != nil && a.Speaker.Enabled() {
		if err := a.Speaker.Speak(ctx, summarize(resp, errText)); err != nil {
			a.Logger.Warn("speech synthesis failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// summarize produces the short spoken outcome for --voice.
func summarize(resp *domain.AutomationResponse, errText string) string {
	switch {
	case resp.ExecutionResult == nil && errText != "":
		return "Something went wrong before the script could run."
	case resp.ExecutionResult == nil:
		return "The script was not executed."
	case resp.ExecutionResult.Err != nil:
		return "The script failed to execute."
	case resp.Verification != nil && !resp.Verification.Passed:
		return "The script ran, but verification failed."
	default:
		return "Done."
	}
}

func executionErrorText(result *domain.ExecutionResult, execErr error) string {
	if execErr == nil {
		return ""
	}
	if result != nil && result.Stderr != "" {
		return result.Stderr
	}
	return execErr.Error()
}

func pickModel(cfg domain.Config, override string) (domain.ModelDefinition, error) {
	if override != "" {
		if model, ok := cfg.FindModelByName(override); ok {
			return model, nil
		}
		return domain.ModelDefinition{}, fmt.Errorf("model %s not configured", override)
	}
	if model, err := cfg.GetDefaultModel(); err == nil {
		return model, nil
	}
	if len(cfg.Models) > 0 {
		return cfg.Models[0], nil
	}
	return domain.ModelDefinition{}, errors.New("no models configured")
}

func (a *Agent) recallSolution(instruction string) string {
	previous, ok, err := a.Store.LatestSuccessful(instruction)
	if err != nil {
		a.Logger.Warn("solution recall failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	if !ok {
		return ""
	}
	return previous.Script
}

func firstReason(risk domain.RiskAssessment) string {
	if len(risk.Reasons) > 0 {
		return risk.Reasons[0]
	}
	return string(risk.Level)
}

// Compile-time interface compliance check
var _ domain.AgentService = (*Agent)(nil)
