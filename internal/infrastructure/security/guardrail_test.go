package security

import (
	"testing"

	"github.com/doeshing/osai-go/internal/domain"
)

func TestEvaluateSafeScript(t *testing.T) {
	g, err := NewGuardrail("")
	if err != nil {
		t.Fatalf("NewGuardrail() error = %v", err)
	}

	risk, err := g.Evaluate(`tell application "Safari" to activate`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if risk.Level != domain.RiskSafe || risk.Action != domain.ActionAllow {
		t.Fatalf("expected safe/allow, got %s/%s", risk.Level, risk.Action)
	}
}

func TestEvaluateBlocksShellEscapeDelete(t *testing.T) {
	g, err := NewGuardrail("")
	if err != nil {
		t.Fatalf("NewGuardrail() error = %v", err)
	}

	risk, err := g.Evaluate(`do shell script "rm -rf /Users"`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if risk.Action != domain.ActionBlock {
		t.Fatalf("expected block, got %s", risk.Action)
	}
	if len(risk.Reasons) == 0 {
		t.Fatal("expected at least one reason")
	}
}

func TestEvaluateAdminPrivilegesNeedsExplicitConfirm(t *testing.T) {
	g, err := NewGuardrail("")
	if err != nil {
		t.Fatalf("NewGuardrail() error = %v", err)
	}

	risk, err := g.Evaluate(`do shell script "touch /etc/x" with administrator privileges`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if risk.Action != domain.ActionExplicitConfirm {
		t.Fatalf("expected explicit_confirm, got %s", risk.Action)
	}
	if risk.Level != domain.RiskHigh {
		t.Fatalf("expected high, got %s", risk.Level)
	}
}

func TestEvaluateKeystrokeInjectionConfirms(t *testing.T) {
	g, err := NewGuardrail("")
	if err != nil {
		t.Fatalf("NewGuardrail() error = %v", err)
	}

	risk, err := g.Evaluate(`tell application "System Events" to keystroke "hello"`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if risk.Action != domain.ActionConfirm {
		t.Fatalf("expected confirm, got %s", risk.Action)
	}
}

func TestEvaluateReportsHighestSeverity(t *testing.T) {
	g, err := NewGuardrail("")
	if err != nil {
		t.Fatalf("NewGuardrail() error = %v", err)
	}

	script := `tell application "System Events" to keystroke "x"
tell application "Finder" to shut down`
	risk, err := g.Evaluate(script)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if risk.Level != domain.RiskHigh {
		t.Fatalf("expected high (most severe match), got %s", risk.Level)
	}
	if len(risk.MatchedRules) < 2 {
		t.Fatalf("expected both rules to match, got %v", risk.MatchedRules)
	}
}
