package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/osai-go/internal/app"
	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/infrastructure/config"
	"github.com/doeshing/osai-go/internal/pkg/logger"
	"github.com/doeshing/osai-go/internal/ports"
	"github.com/doeshing/osai-go/internal/services"
)

func TestPrompterApproveYes(t *testing.T) {
	in := strings.NewReader("y\n")
	var out bytes.Buffer

	p := NewPrompter(in, &out)
	approved, err := p.Approve(domain.ActionConfirm, domain.RiskMedium, "beep", []string{"simulated keyboard input"})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if !approved {
		t.Fatal("expected approval for 'y'")
	}
	if !strings.Contains(out.String(), "simulated keyboard input") {
		t.Fatalf("reasons missing from prompt output: %q", out.String())
	}
}

func TestPrompterExplicitConfirmRejectsShortYes(t *testing.T) {
	in := strings.NewReader("y\n")
	var out bytes.Buffer

	p := NewPrompter(in, &out)
	approved, err := p.Approve(domain.ActionExplicitConfirm, domain.RiskHigh, "restart", nil)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if approved {
		t.Fatal("explicit confirm must require the full word 'yes'")
	}
}

func TestRenderResponseShowsScriptAndGuidance(t *testing.T) {
	var out bytes.Buffer
	resp := domain.AutomationResponse{
		Script: `tell application "Safari" to activate`,
		RiskAssessment: domain.RiskAssessment{
			Level:  domain.RiskSafe,
			Action: domain.ActionAllow,
		},
		ExecutionResult: &domain.ExecutionResult{
			Ran:      false,
			Stderr:   "execution error: Not authorized to send Apple events to Safari. (-1743)",
			Guidance: "Grant automation permission in System Settings > Privacy & Security > Automation.",
		},
	}

	RenderResponse(&out, resp)

	text := out.String()
	if !strings.Contains(text, "Safari") {
		t.Fatalf("script missing from output: %q", text)
	}
	if !strings.Contains(text, "Privacy & Security") {
		t.Fatalf("permission guidance missing from output: %q", text)
	}
}

func TestRenderResponsePreviewMode(t *testing.T) {
	var out bytes.Buffer
	resp := domain.AutomationResponse{
		Script:         "beep",
		RiskAssessment: domain.RiskAssessment{Level: domain.RiskSafe, Action: domain.ActionAllow},
	}

	RenderResponse(&out, resp)

	if !strings.Contains(out.String(), "not executed") {
		t.Fatalf("preview notice missing: %q", out.String())
	}
}

func TestOutcomeLabel(t *testing.T) {
	verifiedFalse := false
	cases := []struct {
		name string
		rec  domain.SolutionRecord
		want string
	}{
		{"not executed", domain.SolutionRecord{}, "skipped"},
		{"failed", domain.SolutionRecord{Executed: true}, "failed"},
		{"verification failed", domain.SolutionRecord{Executed: true, Success: true, Verified: &verifiedFalse}, "unverified"},
		{"success", domain.SolutionRecord{Executed: true, Success: true}, "ok"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := outcomeLabel(tc.rec); got != tc.want {
				t.Fatalf("outcomeLabel() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRootRunsBareInstruction(t *testing.T) {
	provider := &fakeProvider{script: "set volume output muted true"}
	store := &fakeStore{}
	container := newTestContainer(provider, store)

	root := newRootCommand(container)
	root.SetArgs([]string{"mute", "the", "volume"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one record, got %d", len(store.saved))
	}
	if got := store.saved[0].Instruction; got != "mute the volume" {
		t.Fatalf("recorded instruction = %q, want %q", got, "mute the volume")
	}
}

func TestRootWithoutArgsShowsHelp(t *testing.T) {
	container := newTestContainer(&fakeProvider{script: "beep"}, &fakeStore{})

	var out bytes.Buffer
	root := newRootCommand(container)
	root.SetArgs(nil)
	root.SetOut(&out)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected help output, got %q", out.String())
	}
}

func TestApprovalPromptHaltsSpinner(t *testing.T) {
	var animation bytes.Buffer
	spinner := NewSpinner(&animation)
	spinner.Start()

	inner := &recordingPrompter{approve: true}
	p := &spinnerHaltingPrompter{inner: inner, spinner: spinner}

	approved, err := p.Approve(domain.ActionConfirm, domain.RiskMedium, "beep", nil)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if !approved {
		t.Fatal("expected wrapped approval to pass through")
	}
	if !inner.called {
		t.Fatal("inner prompter was not invoked")
	}

	spinner.mu.Lock()
	active := spinner.active
	spinner.mu.Unlock()
	if active {
		t.Fatal("spinner still running while the prompt owns the terminal")
	}
	spinner.Stop() // second Stop must be a no-op
}

func TestHistoryStatsCountsBeyondSearchLimit(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < domain.DefaultHistorySearchLimit+10; i++ {
		store.saved = append(store.saved, domain.SolutionRecord{
			Instruction: "mute the volume",
			Executed:    true,
			Success:     true,
			Timestamp:   time.Now(),
		})
	}
	container := newTestContainer(&fakeProvider{}, store)

	var out bytes.Buffer
	if err := showHistoryStats(&out, container); err != nil {
		t.Fatalf("showHistoryStats() error = %v", err)
	}
	want := "mute the volume (60)"
	if !strings.Contains(out.String(), want) {
		t.Fatalf("top instruction window truncated: %q does not contain %q", out.String(), want)
	}
}

func TestModelsTestRejectsUnrecognizedEndpoint(t *testing.T) {
	configYAML := `preferences:
  default_model: custom
models:
  - name: custom
    endpoint: https://example.invalid/api
    model_id: custom-1
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	container := &app.Container{ConfigLoader: config.NewFileLoader(path)}

	err := testModel(context.Background(), io.Discard, container, "custom")
	if err == nil {
		t.Fatal("expected an error for an unrecognized endpoint")
	}
	if !strings.Contains(err.Error(), "cannot be tested") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTopInstructionsOrdersByFrequency(t *testing.T) {
	now := time.Now()
	records := []domain.SolutionRecord{
		{Instruction: "mute the volume", Timestamp: now},
		{Instruction: "mute the volume", Timestamp: now},
		{Instruction: "open safari", Timestamp: now},
	}

	top := topInstructions(records, 5)
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].instruction != "mute the volume" || top[0].count != 2 {
		t.Fatalf("unexpected top entry: %+v", top[0])
	}
}

func newTestContainer(provider *fakeProvider, store *fakeStore) *app.Container {
	cfg := domain.Config{
		Preferences: domain.Preferences{DefaultModel: "test", AutoApprove: true},
		Models: []domain.ModelDefinition{
			{Name: "test", ModelID: "test-model", Endpoint: "http://localhost:11434"},
		},
	}
	agent := &services.Agent{
		ConfigProvider:   fakeConfigProvider{cfg: cfg},
		ContextCollector: fakeCollector{},
		ProviderFactory:  fakeFactory{provider: provider},
		Security:         fakeSecurity{},
		Runner:           &fakeRunner{},
		Store:            store,
		Logger:           logger.NewStd(false),
	}
	return &app.Container{
		Agent:  agent,
		Config: cfg,
		Store:  store,
		Logger: agent.Logger,
	}
}

type fakeConfigProvider struct {
	cfg domain.Config
}

func (f fakeConfigProvider) Load(context.Context) (domain.Config, error) {
	return f.cfg, nil
}

type fakeCollector struct{}

func (fakeCollector) Collect(context.Context, domain.Config) (domain.ContextSnapshot, error) {
	return domain.ContextSnapshot{}, nil
}

type fakeFactory struct {
	provider ports.Provider
}

func (f fakeFactory) ForModel(domain.ModelDefinition) (ports.Provider, error) {
	return f.provider, nil
}

type fakeProvider struct {
	script string
	calls  int
}

func (f *fakeProvider) Name() string                  { return "fake" }
func (f *fakeProvider) Model() domain.ModelDefinition { return domain.ModelDefinition{} }
func (f *fakeProvider) Complete(context.Context, ports.CompletionRequest) (ports.CompletionResponse, error) {
	f.calls++
	return ports.CompletionResponse{Script: f.script, Reply: f.script}, nil
}

type fakeSecurity struct{}

func (fakeSecurity) Evaluate(string) (domain.RiskAssessment, error) {
	return domain.RiskAssessment{Level: domain.RiskSafe, Action: domain.ActionAllow}, nil
}

type fakeRunner struct{}

func (f *fakeRunner) Run(context.Context, string) (domain.ExecutionResult, error) {
	return domain.ExecutionResult{Ran: true}, nil
}

type fakeStore struct {
	saved []domain.SolutionRecord
}

func (f *fakeStore) Save(rec domain.SolutionRecord) error {
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeStore) Records(limit int, search string) ([]domain.SolutionRecord, error) {
	var records []domain.SolutionRecord
	for _, rec := range f.saved {
		if search != "" && !strings.Contains(rec.Instruction, search) && !strings.Contains(rec.Script, search) {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

func (f *fakeStore) LatestSuccessful(string) (domain.SolutionRecord, bool, error) {
	return domain.SolutionRecord{}, false, nil
}

func (f *fakeStore) Stats() (domain.SolutionStats, error) {
	stats := domain.SolutionStats{Total: len(f.saved)}
	for _, rec := range f.saved {
		if rec.Executed {
			stats.Executed++
			if rec.Success {
				stats.Succeeded++
			}
		}
		if rec.Verified != nil && *rec.Verified {
			stats.Verified++
		}
	}
	return stats, nil
}

func (f *fakeStore) ExportJSON(string) error { return nil }
func (f *fakeStore) Clear() error            { return nil }
func (f *fakeStore) Prune(int) (int, error)  { return 0, nil }
func (f *fakeStore) Path() string            { return "fake" }

type recordingPrompter struct {
	approve bool
	called  bool
}

func (r *recordingPrompter) Approve(domain.GuardrailAction, domain.RiskLevel, string, []string) (bool, error) {
	r.called = true
	return r.approve, nil
}

func (r *recordingPrompter) Enabled() bool { return true }
