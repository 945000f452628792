package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/osai-go/internal/app"
)

// newGuardrailCommand creates the guardrail command with its subcommands
func newGuardrailCommand(container *app.Container) *cobra.Command {
	guardrailCmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Inspect security guardrails",
	}

	guardrailCmd.AddCommand(
		newGuardrailCheckCommand(container),
		newGuardrailStatusCommand(container),
	)

	return guardrailCmd
}

func newGuardrailCheckCommand(container *app.Container) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "check [script]",
		Short: "Evaluate a script against the guardrail rules without running it",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			script := strings.Join(args, " ")
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read script file: %w", err)
				}
				script = string(data)
			}
			if strings.TrimSpace(script) == "" {
				return fmt.Errorf("no script given (pass text or --file)")
			}
			return checkScript(cmd.OutOrStdout(), container, script)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the script from a file")
	return cmd
}

func newGuardrailStatusCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show guardrail status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			status := "disabled"
			if container.Config.Security.Enabled {
				status = "enabled"
			}
			fmt.Fprintf(out, "Guardrails are currently %s.\n", status)
			if container.Config.Security.RulesFile != "" {
				fmt.Fprintf(out, "Rules file: %s\n", container.Config.Security.RulesFile)
			}
			return nil
		},
	}
}

func checkScript(out io.Writer, container *app.Container, script string) error {
	risk, err := container.Security.Evaluate(script)
	if err != nil {
		return fmt.Errorf("guardrail evaluate: %w", err)
	}

	fmt.Fprintf(out, "Risk: %s (%s)\n", strings.ToUpper(string(risk.Level)), risk.Action)
	for _, reason := range risk.Reasons {
		fmt.Fprintf(out, " - %s\n", reason)
	}
	if len(risk.MatchedRules) > 0 {
		fmt.Fprintf(out, "Matched rules: %s\n", strings.Join(risk.MatchedRules, ", "))
	}
	return nil
}
