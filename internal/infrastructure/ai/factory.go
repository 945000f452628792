package ai

import (
	"net/http"
	"strings"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/ports"
)

// Factory builds providers for configured models, inferring the wire format
// from the endpoint.
type Factory struct {
	httpClient *http.Client
}

func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Provider, error) {
	switch inferProviderKind(model.Endpoint, model.Name) {
	case domain.ProviderKindAnthropic:
		return newHTTPProvider("anthropic", model, f.httpClient, anthropicAdapter()), nil
	case domain.ProviderKindOpenAI:
		return newHTTPProvider("openai", model, f.httpClient, openaiAdapter()), nil
	case domain.ProviderKindOllama:
		return newHTTPProvider("ollama", model, f.httpClient, ollamaAdapter()), nil
	default:
		return newHeuristicProvider(model), nil
	}
}

func inferProviderKind(endpoint string, name string) domain.ProviderKind {
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return domain.ProviderKindAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return domain.ProviderKindOpenAI
	case strings.Contains(nameLower, "ollama"), strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"), strings.Contains(endpoint, "127.0.0.1"):
		return domain.ProviderKindOllama
	default:
		return domain.ProviderKindUnknown
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
