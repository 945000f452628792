package security

import (
	"errors"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/osai-go/assets"
	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/pkg/filesystem"
	"github.com/doeshing/osai-go/internal/ports"
)

// Guardrail implements the SecurityService port for generated AppleScript.
// Rules are regex patterns over the script source; the riskiest ones are
// shell escapes ("do shell script") and System Events input synthesis.
type Guardrail struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule DangerPattern
}

// DangerPattern describes a regex-based guardrail rule.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads guardrail rules from disk, falling back to the embedded
// defaults when the file is missing or empty.
func NewGuardrail(path string) (*Guardrail, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	var compiled []compiledPattern
	for _, pattern := range rules.Rules.DangerPatterns {
		re, err := regexp.Compile("(?i)" + pattern.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{re: re, rule: pattern})
	}

	return &Guardrail{patterns: compiled}, nil
}

// Evaluate implements ports.SecurityService.
func (g *Guardrail) Evaluate(script string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{
		Level:  domain.RiskSafe,
		Action: domain.ActionAllow,
	}
	highest := domain.RiskSafe
	for _, pattern := range g.patterns {
		if pattern.re.MatchString(script) {
			ruleLevel := parseRiskLevel(pattern.rule.Level)
			if moreSevere(ruleLevel, highest) {
				highest = ruleLevel
				assessment.Level = ruleLevel
				assessment.Action = parseAction(pattern.rule.Action, ruleLevel)
			}
			assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
			assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
		}
	}
	return assessment, nil
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		data = assets.DefaultGuardrailYAML
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	if len(rules.Rules.DangerPatterns) == 0 {
		if err := yaml.Unmarshal(assets.DefaultGuardrailYAML, &rules); err != nil {
			return RulesFile{}, err
		}
	}
	return rules, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

func parseAction(value string, fallback domain.RiskLevel) domain.GuardrailAction {
	switch strings.ToLower(value) {
	case "preview_only":
		return domain.ActionPreviewOnly
	case "confirm":
		return domain.ActionConfirm
	case "explicit_confirm":
		return domain.ActionExplicitConfirm
	case "block":
		return domain.ActionBlock
	default:
		if fallback == domain.RiskSafe {
			return domain.ActionAllow
		}
		return domain.ActionConfirm
	}
}

func moreSevere(next domain.RiskLevel, current domain.RiskLevel) bool {
	order := map[domain.RiskLevel]int{
		domain.RiskSafe:     0,
		domain.RiskLow:      1,
		domain.RiskMedium:   2,
		domain.RiskHigh:     3,
		domain.RiskCritical: 4,
	}
	return order[next] > order[current]
}

func expandPath(path string) string {
	if path == "" {
		return filesystem.AppDir("guardrail.yaml")
	}
	return filesystem.ExpandPath(path)
}

var _ ports.SecurityService = (*Guardrail)(nil)
