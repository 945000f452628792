// Package domain defines core entities and value objects for OSAI.
//
// The domain layer is independent of infrastructure concerns and represents
// pure data structures shared across the application.
package domain

import "fmt"

// Config mirrors ~/.osai/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Speech              SpeechSettings    `yaml:"speech"`
	Security            SecuritySettings  `yaml:"security"`
	Execution           ExecutionSettings `yaml:"execution"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel   string `yaml:"default_model"`
	AutoApprove    bool   `yaml:"auto_approve"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// SpeechSettings configures voice input and output.
type SpeechSettings struct {
	// Voice names a macOS speech-synthesis voice ("say -v"); empty picks the
	// system default.
	Voice string `yaml:"voice"`
	// RecordSeconds is how long --listen captures from the microphone.
	RecordSeconds int `yaml:"record_seconds"`
	// TranscribeModel is the speech-to-text model id used for --listen.
	TranscribeModel string `yaml:"transcribe_model"`
}

// SecuritySettings defines guardrail behavior.
type SecuritySettings struct {
	Enabled   bool   `yaml:"enabled"`
	RulesFile string `yaml:"rules_file"`
}

// ExecutionSettings controls how generated scripts run.
type ExecutionSettings struct {
	// OsascriptPath overrides the osascript binary (tests, non-standard installs).
	OsascriptPath        string `yaml:"osascript_path"`
	ConfirmBeforeExecute bool   `yaml:"confirm_before_execute"`
}

// GetDefaultModel retrieves the default model definition from configuration.
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Preferences.DefaultModel == "" {
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}
	if model, ok := c.FindModelByName(c.Preferences.DefaultModel); ok {
		return model, nil
	}
	return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Preferences.DefaultModel)
}

// FindModelByName searches for a model by its name.
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration.
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}
