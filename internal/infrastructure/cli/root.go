package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/osai-go/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.ConfigPath, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.Agent.Prompter = NewPrompter(nil, nil)
	container.Agent.Clipboard = NewClipboard()

	return newRootCommand(container), nil
}

func newRootCommand(container *app.Container) *cobra.Command {
	root := &cobra.Command{
		Use:   "osai [instruction]",
		Short: "OSAI - macOS automation assistant",
		Long:  "OSAI turns natural language into AppleScript, runs it with safety guardrails, and remembers what worked.",
		// Bare words that match no subcommand are treated as an instruction.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return executeRun(cmd, container, defaultRunFlags(), args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newModelsCommand(container))
	root.AddCommand(newGuardrailCommand(container))
	root.AddCommand(newInitCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newVersionCommand())
	return root
}
