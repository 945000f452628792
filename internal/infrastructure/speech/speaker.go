// Package speech wraps the macOS speech synthesizer and voice input
// (microphone capture plus transcription).
package speech

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/doeshing/osai-go/internal/ports"
)

// SaySpeaker voices text through the macOS `say` command.
type SaySpeaker struct {
	voice string
}

// NewSaySpeaker builds a speaker; voice may be empty for the system default.
func NewSaySpeaker(voice string) *SaySpeaker {
	return &SaySpeaker{voice: voice}
}

// Enabled reports whether speech synthesis is available on this platform.
func (s *SaySpeaker) Enabled() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("say")
	return err == nil
}

// Speak implements ports.Speaker. The call blocks until playback finishes.
func (s *SaySpeaker) Speak(ctx context.Context, text string) error {
	args := []string{}
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	args = append(args, text)
	return exec.CommandContext(ctx, "say", args...).Run()
}

var _ ports.Speaker = (*SaySpeaker)(nil)
