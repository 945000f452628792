package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/ports"
)

// Doctor runs environment diagnostics.
type Doctor struct {
	ConfigProvider ports.ConfigProvider
	Security       ports.SecurityService
	Store          ports.SolutionStore
	Speaker        ports.Speaker
	Transcriber    ports.Transcriber
}

// Run executes checks and returns a report.
func (d *Doctor) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := d.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded, format %s", cfg.ConfigFormatVersion)))

	checks = append(checks, binaryCheck("osascript", "scripts cannot be executed without it"))
	checks = append(checks, binaryCheck("ffmpeg", "--listen capture will be unavailable"))

	if d.Speaker != nil {
		if d.Speaker.Enabled() {
			checks = append(checks, ok("Speech synthesis", "say available"))
		} else {
			checks = append(checks, warn("Speech synthesis", "say not available; --voice output disabled"))
		}
	}

	if d.Security != nil {
		if _, err := d.Security.Evaluate("beep"); err != nil {
			checks = append(checks, fail("Guardrail", err.Error()))
		} else {
			checks = append(checks, ok("Guardrail", "rules loaded"))
		}
	} else {
		checks = append(checks, warn("Guardrail", "security service not initialized"))
	}

	if d.Store != nil {
		if _, err := d.Store.Stats(); err != nil {
			checks = append(checks, warn("Solutions store", err.Error()))
		} else {
			checks = append(checks, ok("Solutions store", d.Store.Path()))
		}
	}

	if d.Transcriber != nil && !d.Transcriber.Available() {
		checks = append(checks, warn("Transcription", "OPENAI_API_KEY missing; --listen disabled"))
	}

	checks = append(checks, apiCheck(cfg.Models))

	return domain.HealthReport{Checks: checks}, nil
}

func binaryCheck(name, consequence string) domain.HealthCheck {
	if _, err := exec.LookPath(name); err != nil {
		return warn(name, fmt.Sprintf("not found on PATH; %s", consequence))
	}
	return ok(name, "found")
}

func apiCheck(models []domain.ModelDefinition) domain.HealthCheck {
	for _, model := range models {
		switch {
		case strings.Contains(model.Endpoint, "anthropic.com"):
			if envMissing(model.AuthEnvVar, "ANTHROPIC_API_KEY") {
				return warn("API keys", "ANTHROPIC_API_KEY missing")
			}
		case strings.Contains(model.Endpoint, "openai.com"):
			if envMissing(model.AuthEnvVar, "OPENAI_API_KEY") {
				return warn("API keys", "OPENAI_API_KEY missing")
			}
		}
	}
	return ok("API keys", "detected for configured providers")
}

func envMissing(primary, fallback string) bool {
	if primary != "" && os.Getenv(primary) != "" {
		return false
	}
	if fallback != "" && os.Getenv(fallback) != "" {
		return false
	}
	return true
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
