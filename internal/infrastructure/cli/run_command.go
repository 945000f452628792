package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/osai-go/internal/app"
	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/infrastructure/speech"
)

type runFlags struct {
	model       string
	verify      bool
	voice       bool
	listen      bool
	duration    int
	autoApprove bool
	previewOnly bool
	copyScript  bool
	debug       bool
	timeout     time.Duration
}

func defaultRunFlags() runFlags {
	return runFlags{timeout: domain.DefaultRunTimeout}
}

func newRunCommand(container *app.Container) *cobra.Command {
	flags := defaultRunFlags()

	cmd := &cobra.Command{
		Use:   "run [instruction]",
		Short: "Automate a macOS task from natural language",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, container, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Override model name (default from config)")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "Ask the model to verify the outcome after execution")
	cmd.Flags().BoolVar(&flags.voice, "voice", false, "Speak the outcome aloud")
	cmd.Flags().BoolVar(&flags.listen, "listen", false, "Record the instruction from the microphone")
	cmd.Flags().IntVar(&flags.duration, "duration", 0, "Recording length in seconds for --listen (default from config)")
	cmd.Flags().BoolVarP(&flags.autoApprove, "yes", "y", false, "Execute without extra confirmation (still subject to guardrails)")
	cmd.Flags().BoolVarP(&flags.previewOnly, "preview", "p", false, "Only preview the script, do not execute")
	cmd.Flags().BoolVarP(&flags.copyScript, "copy", "c", false, "Copy generated script to clipboard")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable verbose logging")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", domain.DefaultRunTimeout, "Override request timeout")

	return cmd
}

// executeRun handles one instruction. It is shared by the run subcommand and
// the bare-argument root invocation.
func executeRun(cmd *cobra.Command, container *app.Container, flags runFlags, args []string) error {
	ctx := cmd.Context()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	instruction := strings.Join(args, " ")
	if flags.listen {
		spoken, err := captureInstruction(ctx, cmd, container, flags.duration)
		if err != nil {
			return err
		}
		instruction = spoken
	}
	if strings.TrimSpace(instruction) == "" {
		return fmt.Errorf("no instruction given (pass text or use --listen)")
	}

	req := domain.AutomationRequest{
		Context:         ctx,
		Instruction:     instruction,
		ModelOverride:   flags.model,
		Verify:          flags.verify,
		Voice:           flags.voice,
		AutoApprove:     flags.autoApprove,
		PreviewOnly:     flags.previewOnly,
		CopyToClipboard: flags.copyScript,
		Debug:           flags.debug,
	}

	spinner := NewSpinner(os.Stderr)
	// The agent may block on a confirmation prompt mid-run; the wrapper
	// halts the animation before the terminal is handed to the user.
	if prompter := container.Agent.Prompter; prompter != nil {
		container.Agent.Prompter = &spinnerHaltingPrompter{inner: prompter, spinner: spinner}
		defer func() { container.Agent.Prompter = prompter }()
	}
	spinner.Start()
	resp, err := container.Agent.Run(req)
	spinner.Stop()

	RenderResponse(cmd.OutOrStdout(), resp)
	return err
}

// captureInstruction records microphone audio and transcribes it into the
// instruction text for --listen.
func captureInstruction(ctx context.Context, cmd *cobra.Command, container *app.Container, duration int) (string, error) {
	if container.Recorder == nil || !container.Recorder.Available() {
		return "", fmt.Errorf("audio recording requires ffmpeg on PATH")
	}
	if container.Transcriber == nil || !container.Transcriber.Available() {
		return "", fmt.Errorf("transcription unavailable (set OPENAI_API_KEY)")
	}

	if duration <= 0 {
		duration = container.Config.Speech.RecordSeconds
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listening for %d seconds...\n", duration)
	audioPath, err := container.Recorder.Record(ctx, duration)
	if err != nil {
		return "", fmt.Errorf("record audio: %w", err)
	}
	defer speech.Cleanup(audioPath)

	instruction, err := container.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("nothing was transcribed, try again")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Heard: %s\n", instruction)
	return instruction, nil
}
