package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/osai-go/assets"
	"github.com/doeshing/osai-go/internal/app"
	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/pkg/filesystem"
)

const msgInitCancelled = "Init cancelled."

// newInitCommand creates the init command. It writes the embedded default
// configuration and guardrail rules so users have files to edit.
func newInitCommand(container *app.Container) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize OSAI configuration",
		Long: `Initialize OSAI configuration with default settings.

This command creates ~/.osai/config.yaml and ~/.osai/guardrail.yaml with
sensible defaults. After initialization, you should:
  1. Edit ~/.osai/config.yaml to configure your AI models
  2. Set required API keys (e.g., ANTHROPIC_API_KEY, OPENAI_API_KEY)
  3. Run 'osai doctor' to verify your setup
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, container, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config without prompting")

	return cmd
}

func runInit(cmd *cobra.Command, container *app.Container, force bool) error {
	out := cmd.OutOrStdout()
	configPath := container.ConfigLoader.Path()

	if !shouldProceedWithInit(cmd, configPath, force) {
		fmt.Fprintln(out, msgInitCancelled)
		return nil
	}

	if err := writeDefaultFile(configPath, assets.DefaultConfigYAML); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	rulesPath := filesystem.AppDir("guardrail.yaml")
	if _, err := os.Stat(rulesPath); err != nil || force {
		if err := writeDefaultFile(rulesPath, assets.DefaultGuardrailYAML); err != nil {
			return fmt.Errorf("failed to write guardrail rules: %w", err)
		}
	}

	displayCompletionInstructions(out, configPath)
	return nil
}

func shouldProceedWithInit(cmd *cobra.Command, configPath string, force bool) bool {
	if _, err := os.Stat(configPath); err != nil {
		return true
	}
	if force {
		return true
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	fmt.Fprintf(cmd.OutOrStdout(), "%s exists. Overwrite? [y/N]: ", configPath)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func writeDefaultFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return os.WriteFile(path, data, domain.SecureFilePermissions)
}

func displayCompletionInstructions(out io.Writer, configPath string) {
	fmt.Fprintf(out, "\nConfiguration initialized: %s\n\n", configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Edit the config file to add your AI models:")
	fmt.Fprintf(out, "     %s\n\n", configPath)
	fmt.Fprintln(out, "  2. Set required environment variables:")
	fmt.Fprintln(out, "     export ANTHROPIC_API_KEY=your-key-here")
	fmt.Fprintln(out, "     export OPENAI_API_KEY=your-key-here")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "  3. Verify your setup:")
	fmt.Fprintln(out, "     osai doctor")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "  4. Try an instruction:")
	fmt.Fprintln(out, "     osai run \"mute the volume\"")
}
