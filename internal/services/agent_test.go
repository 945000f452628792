package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/pkg/logger"
	"github.com/doeshing/osai-go/internal/ports"
)

func testConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "test", AutoApprove: true},
		Execution:   domain.ExecutionSettings{ConfirmBeforeExecute: true},
		Models: []domain.ModelDefinition{
			{Name: "test", ModelID: "test-model", Endpoint: "http://localhost:11434"},
		},
	}
}

func newAgent(provider *stubProvider, runner *stubRunner, store *stubStore, speaker *stubSpeaker) *Agent {
	return &Agent{
		ConfigProvider:   stubConfigProvider{cfg: testConfig()},
		ContextCollector: stubContextCollector{snapshot: domain.ContextSnapshot{OSVersion: "macOS 15.1"}},
		ProviderFactory:  stubProviderFactory{provider: provider},
		Security:         stubSecurity{risk: domain.RiskAssessment{Level: domain.RiskSafe, Action: domain.ActionAllow}},
		Runner:           runner,
		Store:            store,
		Speaker:          speaker,
		Logger:           logger.NewStd(false),
	}
}

func TestRunProducesNonEmptyScript(t *testing.T) {
	provider := &stubProvider{script: `tell application "Calculator" to activate`}
	runner := &stubRunner{result: domain.ExecutionResult{Ran: true}}
	store := &stubStore{}

	agent := newAgent(provider, runner, store, nil)
	resp, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "open the calculator",
		AutoApprove: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Script == "" {
		t.Fatal("expected a non-empty script")
	}
	if !runner.called {
		t.Fatal("runner was not called")
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one record, got %d", len(store.saved))
	}
	if rec := store.saved[0]; !rec.Executed || !rec.Success {
		t.Fatalf("record flags wrong: %+v", rec)
	}
}

func TestRunRecordsFailureWithErrorText(t *testing.T) {
	execErr := errors.New("exit status 1")
	provider := &stubProvider{script: `tell application "Nope" to activate`}
	runner := &stubRunner{
		result: domain.ExecutionResult{
			Ran:      false,
			Stderr:   "execution error: Can't get application \"Nope\". (-1728)",
			ExitCode: 1,
			Err:      execErr,
		},
		err: execErr,
	}
	store := &stubStore{}

	agent := newAgent(provider, runner, store, nil)
	_, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "open an app that does not exist",
		AutoApprove: true,
	})
	if err == nil {
		t.Fatal("expected execution error")
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one record, got %d", len(store.saved))
	}
	rec := store.saved[0]
	if rec.Success {
		t.Fatal("record must carry the failure flag")
	}
	if rec.ErrorText == "" {
		t.Fatal("record must carry non-empty error text")
	}
}

func TestVerifyFlagIssuesExactlyOneExtraCall(t *testing.T) {
	provider := &stubProvider{script: "beep", reply: "VERDICT: pass\nLooks right."}
	runner := &stubRunner{result: domain.ExecutionResult{Ran: true}}
	store := &stubStore{}

	agent := newAgent(provider, runner, store, nil)
	resp, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "beep once",
		AutoApprove: true,
		Verify:      true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("provider calls = %d, want 2 (generate + verify)", provider.calls)
	}
	if resp.Verification == nil || !resp.Verification.Passed {
		t.Fatalf("verification = %+v", resp.Verification)
	}
	rec := store.saved[0]
	if rec.Verified == nil || !*rec.Verified {
		t.Fatalf("verified not recorded: %+v", rec)
	}
	if rec.Feedback == "" {
		t.Fatal("feedback not recorded")
	}
}

func TestNoVerifyFlagMakesSingleCall(t *testing.T) {
	provider := &stubProvider{script: "beep"}
	runner := &stubRunner{result: domain.ExecutionResult{Ran: true}}

	agent := newAgent(provider, runner, &stubStore{}, nil)
	if _, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "beep once",
		AutoApprove: true,
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
}

func TestVoiceFlagSpeaksExactlyOnce(t *testing.T) {
	provider := &stubProvider{script: "beep"}
	runner := &stubRunner{result: domain.ExecutionResult{Ran: true}}
	speaker := &stubSpeaker{}

	agent := newAgent(provider, runner, &stubStore{}, speaker)
	if _, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "beep once",
		AutoApprove: true,
		Voice:       true,
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if speaker.calls != 1 {
		t.Fatalf("speaker calls = %d, want 1", speaker.calls)
	}
}

func TestNoVoiceFlagNeverSpeaks(t *testing.T) {
	provider := &stubProvider{script: "beep"}
	runner := &stubRunner{result: domain.ExecutionResult{Ran: true}}
	speaker := &stubSpeaker{}

	agent := newAgent(provider, runner, &stubStore{}, speaker)
	if _, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "beep once",
		AutoApprove: true,
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if speaker.calls != 0 {
		t.Fatalf("speaker calls = %d, want 0", speaker.calls)
	}
}

func TestVoiceFlagSpeaksOnGenerationFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("api unreachable")}
	speaker := &stubSpeaker{}
	store := &stubStore{}

	agent := newAgent(provider, &stubRunner{}, store, speaker)
	_, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "beep once",
		AutoApprove: true,
		Voice:       true,
	})
	if err == nil {
		t.Fatal("expected generation error")
	}
	if speaker.calls != 1 {
		t.Fatalf("speaker calls = %d, want 1", speaker.calls)
	}
	if len(store.saved) != 1 || store.saved[0].ErrorText == "" {
		t.Fatalf("generation failure not recorded: %+v", store.saved)
	}
}

func TestRunBlocksWhenGuardrailBlocks(t *testing.T) {
	provider := &stubProvider{script: `do shell script "rm -rf /"`}
	runner := &stubRunner{}
	store := &stubStore{}

	agent := newAgent(provider, runner, store, nil)
	agent.Security = stubSecurity{risk: domain.RiskAssessment{
		Level:   domain.RiskCritical,
		Action:  domain.ActionBlock,
		Reasons: []string{"Shell escape deleting from filesystem root"},
	}}

	_, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "delete everything",
		AutoApprove: true,
	})
	if err == nil {
		t.Fatal("expected guardrail block error")
	}
	if runner.called {
		t.Fatal("blocked script must not execute")
	}
	if len(store.saved) != 1 || store.saved[0].Executed {
		t.Fatalf("blocked attempt should be recorded unexecuted: %+v", store.saved)
	}
}

func TestDeclinedApprovalRecordsUnexecutedAttempt(t *testing.T) {
	provider := &stubProvider{script: "beep"}
	runner := &stubRunner{}
	store := &stubStore{}

	agent := newAgent(provider, runner, store, nil)
	agent.ConfigProvider = stubConfigProvider{cfg: func() domain.Config {
		cfg := testConfig()
		cfg.Preferences.AutoApprove = false
		return cfg
	}()}
	agent.Prompter = stubPrompter{approve: false}

	resp, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "beep once",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if runner.called {
		t.Fatal("declined script must not execute")
	}
	if resp.ExecutionResult != nil {
		t.Fatal("no execution result expected")
	}
	if len(store.saved) != 1 || store.saved[0].Executed {
		t.Fatalf("declined attempt should be recorded unexecuted: %+v", store.saved)
	}
}

func TestPastSolutionBiasesPrompt(t *testing.T) {
	previous := `set volume output muted true`
	provider := &stubProvider{script: previous}
	store := &stubStore{
		latest:   domain.SolutionRecord{Script: previous, Instruction: "mute the volume"},
		latestOK: true,
	}

	agent := newAgent(provider, &stubRunner{result: domain.ExecutionResult{Ran: true}}, store, nil)
	resp, err := agent.Run(domain.AutomationRequest{
		Context:     context.Background(),
		Instruction: "mute the volume",
		AutoApprove: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !resp.ReusedSolution {
		t.Fatal("expected response to flag solution reuse")
	}
	var found bool
	for _, msg := range provider.lastMessages {
		if strings.Contains(msg.Content, previous) && strings.EqualFold(msg.Role, "user") && !strings.Contains(msg.Content, "Generate AppleScript") {
			found = true
		}
	}
	if !found {
		t.Fatalf("previous solution missing from prompt: %+v", provider.lastMessages)
	}
}

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubContextCollector struct {
	snapshot domain.ContextSnapshot
	err      error
}

func (s stubContextCollector) Collect(context.Context, domain.Config) (domain.ContextSnapshot, error) {
	return s.snapshot, s.err
}

type stubProviderFactory struct {
	provider ports.Provider
	err      error
}

func (s stubProviderFactory) ForModel(domain.ModelDefinition) (ports.Provider, error) {
	return s.provider, s.err
}

type stubProvider struct {
	script       string
	reply        string
	err          error
	calls        int
	lastMessages []domain.PromptMessage
}

func (s *stubProvider) Name() string                  { return "stub" }
func (s *stubProvider) Model() domain.ModelDefinition { return domain.ModelDefinition{} }
func (s *stubProvider) Complete(_ context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	s.calls++
	s.lastMessages = req.Messages
	if s.err != nil {
		return ports.CompletionResponse{}, s.err
	}
	reply := s.reply
	if reply == "" {
		reply = s.script
	}
	return ports.CompletionResponse{Script: s.script, Reply: reply}, nil
}

type stubSecurity struct {
	risk domain.RiskAssessment
	err  error
}

func (s stubSecurity) Evaluate(string) (domain.RiskAssessment, error) {
	return s.risk, s.err
}

type stubRunner struct {
	result domain.ExecutionResult
	err    error
	called bool
}

func (s *stubRunner) Run(context.Context, string) (domain.ExecutionResult, error) {
	s.called = true
	return s.result, s.err
}

type stubStore struct {
	saved    []domain.SolutionRecord
	latest   domain.SolutionRecord
	latestOK bool
}

func (s *stubStore) Save(rec domain.SolutionRecord) error { s.saved = append(s.saved, rec); return nil }
func (s *stubStore) Records(int, string) ([]domain.SolutionRecord, error) {
	return s.saved, nil
}
func (s *stubStore) LatestSuccessful(string) (domain.SolutionRecord, bool, error) {
	return s.latest, s.latestOK, nil
}
func (s *stubStore) Stats() (domain.SolutionStats, error) { return domain.SolutionStats{}, nil }
func (s *stubStore) ExportJSON(string) error              { return nil }
func (s *stubStore) Clear() error                         { return nil }
func (s *stubStore) Prune(int) (int, error)               { return 0, nil }
func (s *stubStore) Path() string                         { return "stub" }

type stubSpeaker struct {
	calls int
}

func (s *stubSpeaker) Speak(context.Context, string) error { s.calls++; return nil }
func (s *stubSpeaker) Enabled() bool                       { return true }

type stubPrompter struct {
	approve bool
}

func (s stubPrompter) Approve(domain.GuardrailAction, domain.RiskLevel, string, []string) (bool, error) {
	return s.approve, nil
}
func (s stubPrompter) Enabled() bool { return true }
