package app

import (
	"context"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/infrastructure/ai"
	"github.com/doeshing/osai-go/internal/infrastructure/config"
	"github.com/doeshing/osai-go/internal/infrastructure/macctx"
	"github.com/doeshing/osai-go/internal/infrastructure/osascript"
	"github.com/doeshing/osai-go/internal/infrastructure/security"
	"github.com/doeshing/osai-go/internal/infrastructure/speech"
	"github.com/doeshing/osai-go/internal/infrastructure/store"
	"github.com/doeshing/osai-go/internal/pkg/logger"
	"github.com/doeshing/osai-go/internal/ports"
	"github.com/doeshing/osai-go/internal/services"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Agent        *services.Agent
	Doctor       *services.Doctor
	Config       domain.Config
	ConfigLoader *config.FileLoader
	Security     ports.SecurityService
	Store        ports.SolutionStore
	Speaker      ports.Speaker
	Recorder     *speech.Recorder
	Transcriber  ports.Transcriber
	Logger       ports.Logger
}

// BuildContainer constructs the dependency graph. The approval prompter and
// clipboard adapters are attached later by the CLI layer, which owns the
// terminal.
func BuildContainer(ctx context.Context, configPath string, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader(configPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	collector := macctx.NewCollector()
	solutionStore := store.NewSQLiteStore("")

	guardrail, err := security.NewGuardrail(cfg.Security.RulesFile)
	if err != nil {
		// Unreadable custom rules fall back to the embedded defaults.
		log.Warn("guardrail rules unavailable, using defaults", map[string]interface{}{"error": err.Error()})
		guardrail, err = security.NewGuardrail("")
		if err != nil {
			return nil, err
		}
	}

	speaker := speech.NewSaySpeaker(cfg.Speech.Voice)
	recorder := speech.NewRecorder("")
	transcriber := speech.NewWhisperTranscriber("", cfg.Speech.TranscribeModel, "")

	agent := &services.Agent{
		ConfigProvider:   cfgLoader,
		ContextCollector: collector,
		ProviderFactory:  ai.NewFactory(),
		Security:         guardrail,
		Runner:           osascript.NewRunner(cfg.Execution.OsascriptPath),
		Store:            solutionStore,
		Speaker:          speaker,
		Logger:           log,
	}

	doctorService := &services.Doctor{
		ConfigProvider: cfgLoader,
		Security:       guardrail,
		Store:          solutionStore,
		Speaker:        speaker,
		Transcriber:    transcriber,
	}

	return &Container{
		Agent:        agent,
		Doctor:       doctorService,
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Security:     guardrail,
		Store:        solutionStore,
		Speaker:      speaker,
		Recorder:     recorder,
		Transcriber:  transcriber,
		Logger:       log,
	}, nil
}
