package domain

// RiskLevel enumerates guardrail outcomes.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// GuardrailAction describes how the runner should react to a risk level.
type GuardrailAction string

const (
	ActionAllow           GuardrailAction = "allow"
	ActionPreviewOnly     GuardrailAction = "preview_only"
	ActionConfirm         GuardrailAction = "confirm"
	ActionExplicitConfirm GuardrailAction = "explicit_confirm"
	ActionBlock           GuardrailAction = "block"
)

// RiskAssessment aggregates guardrail evaluation data for a generated script.
type RiskAssessment struct {
	Level        RiskLevel
	Action       GuardrailAction
	Reasons      []string
	MatchedRules []string
}
