package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/ports"
)

// heuristicProvider is the offline fallback used when no known endpoint is
// configured. It covers a handful of common requests with canned scripts.
type heuristicProvider struct {
	model domain.ModelDefinition
}

func newHeuristicProvider(model domain.ModelDefinition) ports.Provider {
	return &heuristicProvider{model: model}
}

// HeuristicProviderName identifies the offline fallback provider.
const HeuristicProviderName = "heuristic"

func (p *heuristicProvider) Name() string {
	return HeuristicProviderName
}

func (p *heuristicProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *heuristicProvider) Complete(_ context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	instruction := lastUserMessage(req.Messages)
	script := guessScript(instruction)
	return ports.CompletionResponse{
		Script: script,
		Reply:  script,
	}, nil
}

func lastUserMessage(messages []domain.PromptMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			return messages[i].Content
		}
	}
	return ""
}

func guessScript(instruction string) string {
	lower := strings.ToLower(instruction)
	switch {
	case strings.Contains(lower, "mute"):
		return "set volume output muted true"
	case strings.Contains(lower, "unmute"):
		return "set volume output muted false"
	case strings.Contains(lower, "open") && strings.Contains(lower, "safari"):
		return `tell application "Safari" to activate`
	case strings.Contains(lower, "open") && strings.Contains(lower, "finder"):
		return `tell application "Finder" to activate`
	default:
		return fmt.Sprintf(`display notification %q with title "osai"`,
			"No AI provider configured; cannot automate: "+strings.TrimSpace(instruction))
	}
}
