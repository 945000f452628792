package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/ports"
)

// Prompter implements ApprovalPrompter using stdin/stdout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. When stdin is not a
// terminal the prompter reports itself disabled so scripts never hang on a
// confirmation nobody can answer.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := true
	if in == nil {
		in = os.Stdin
		interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Approve asks the user for confirmation based on guardrail action.
func (p *Prompter) Approve(action domain.GuardrailAction, level domain.RiskLevel, script string, reasons []string) (bool, error) {
	if level != domain.RiskSafe {
		fmt.Fprintf(p.out, "\n%s risk detected (%s)\n", strings.ToUpper(string(level)), action)
	}
	for _, reason := range reasons {
		fmt.Fprintf(p.out, " - %s\n", reason)
	}
	fmt.Fprintln(p.out, "Script:")
	for _, line := range strings.Split(script, "\n") {
		fmt.Fprintf(p.out, "  %s\n", line)
	}

	if action == domain.ActionExplicitConfirm {
		return p.askExplicit()
	}
	return p.ask("[y/N]: ")
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, "Execute? ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	fmt.Fprint(p.out, "Type 'yes' to confirm (or anything else to cancel): ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == "yes", nil
}

var _ ports.ApprovalPrompter = (*Prompter)(nil)

// spinnerHaltingPrompter halts the progress spinner before handing the
// terminal to the wrapped prompter, so the animation never repaints the line
// the user is typing on.
type spinnerHaltingPrompter struct {
	inner   ports.ApprovalPrompter
	spinner *Spinner
}

func (p *spinnerHaltingPrompter) Enabled() bool {
	return p.inner.Enabled()
}

func (p *spinnerHaltingPrompter) Approve(action domain.GuardrailAction, level domain.RiskLevel, script string, reasons []string) (bool, error) {
	p.spinner.Stop()
	return p.inner.Approve(action, level, script, reasons)
}

var _ ports.ApprovalPrompter = (*spinnerHaltingPrompter)(nil)
