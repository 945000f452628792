// Package osascript executes generated AppleScript through the macOS
// scripting bridge.
package osascript

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/ports"
)

// Runner shells out to osascript -e.
type Runner struct {
	binary string
}

// NewRunner builds a runner; binary defaults to osascript from PATH.
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = "osascript"
	}
	return &Runner{binary: binary}
}

// Run implements ports.ScriptRunner.
func (r *Runner) Run(ctx context.Context, script string) (domain.ExecutionResult, error) {
	c := exec.CommandContext(ctx, r.binary, "-e", script)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	duration := time.Since(start).Milliseconds()

	result := domain.ExecutionResult{
		Ran:        err == nil,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: duration,
	}
	if err == nil {
		return result, nil
	}

	result.Err = err
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	}
	result.Guidance = ClassifyFailure(result.Stderr)
	return result, err
}

// ClassifyFailure inspects osascript stderr and returns operator guidance for
// known failure classes, or "" when nothing specific applies.
func ClassifyFailure(stderr string) string {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "not authorized to send apple events"),
		strings.Contains(lower, "not authorised to send apple events"):
		return permissionGuidance
	case strings.Contains(lower, "osascript: command not found"),
		strings.Contains(lower, "executable file not found"):
		return "osascript was not found; this tool only works on macOS."
	default:
		return ""
	}
}

const permissionGuidance = `Permission required. To allow scripts to control applications:
 1. Open System Settings
 2. Go to Privacy & Security > Automation
 3. Find your terminal in the list
 4. Enable the checkbox for the application you want to control
Then run the command again.`

var _ ports.ScriptRunner = (*Runner)(nil)
