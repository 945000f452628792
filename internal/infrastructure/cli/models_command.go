package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/osai-go/internal/app"
	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/infrastructure/ai"
	"github.com/doeshing/osai-go/internal/ports"
)

const modelTestTimeout = 15 * time.Second

// newModelsCommand creates the models command with its subcommands
func newModelsCommand(container *app.Container) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect configured AI models",
	}

	modelsCmd.AddCommand(
		newModelsListCommand(container),
		newModelsTestCommand(container),
	)

	return modelsCmd
}

func newModelsListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

func newModelsTestCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "test <name>",
		Short: "Test connectivity for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return testModel(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}
}

func listModels(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigLoader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Fprintf(out, "NAME\tMODEL ID\tENDPOINT\tDEFAULT\n")
	for _, model := range cfg.Models {
		defaultMarker := ""
		if cfg.Preferences.DefaultModel == model.Name {
			defaultMarker = "*"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n",
			model.Name,
			model.ModelID,
			model.Endpoint,
			defaultMarker)
	}
	return nil
}

func testModel(ctx context.Context, out io.Writer, container *app.Container, modelName string) error {
	cfg, err := container.ConfigLoader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	model, exists := cfg.FindModelByName(modelName)
	if !exists {
		return fmt.Errorf("model %s not found", modelName)
	}

	provider, err := ai.NewFactory().ForModel(model)
	if err != nil {
		return fmt.Errorf("failed to create provider for model %s: %w", modelName, err)
	}
	if provider.Name() == ai.HeuristicProviderName {
		return fmt.Errorf("model %s endpoint %q is not recognized; only the offline fallback would answer, so connectivity cannot be tested", modelName, model.Endpoint)
	}

	testCtx, cancel := context.WithTimeout(ctx, modelTestTimeout)
	defer cancel()

	_, err = provider.Complete(testCtx, ports.CompletionRequest{
		Messages: []domain.PromptMessage{
			{Role: "user", Content: "Reply with the word ready."},
		},
	})
	if err != nil {
		return fmt.Errorf("model %s test failed: %w", modelName, err)
	}

	fmt.Fprintf(out, "Model %s (%s) responded successfully.\n", modelName, provider.Name())
	return nil
}
