package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/osai-go/assets"
	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/pkg/filesystem"
	"github.com/doeshing/osai-go/internal/ports"
)

// FileLoader loads YAML configuration from ~/.osai/config.yaml (overridable
// via OSAI_CONFIG or an explicit path).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, err
			}
			data = assets.DefaultConfigYAML
		} else {
			return domain.Config{}, err
		}
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

// Path reports the config file location the loader resolves to.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv("OSAI_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filesystem.AppDir("config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = int(domain.DefaultRunTimeout.Seconds())
	}
	if cfg.Speech.RecordSeconds == 0 {
		cfg.Speech.RecordSeconds = domain.DefaultRecordSeconds
	}
	if cfg.Speech.TranscribeModel == "" {
		cfg.Speech.TranscribeModel = domain.DefaultTranscribeModel
	}
	if cfg.Security.RulesFile == "" {
		cfg.Security.RulesFile = filesystem.AppDir("guardrail.yaml")
	}
	for i := range cfg.Models {
		if cfg.Models[i].MaxTokens == 0 {
			cfg.Models[i].MaxTokens = domain.DefaultMaxTokens
		}
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
