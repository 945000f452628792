package services

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/doeshing/osai-go/internal/domain"
)

// generationMessages renders the chat messages for script generation.
// Custom prompts from the model definition are expanded as templates; the
// built-in prompt is used otherwise. A previously successful solution, when
// present, is injected as a reference example.
func generationMessages(model domain.ModelDefinition, instruction string, snapshot domain.ContextSnapshot, previousScript string) ([]domain.PromptMessage, error) {
	data := templateData{
		Instruction:    instruction,
		OSVersion:      snapshot.OSVersion,
		User:           snapshot.User,
		FrontmostApp:   snapshot.FrontmostApp,
		RunningApps:    strings.Join(snapshot.RunningApps, ", "),
		PreviousScript: previousScript,
	}

	messages := model.Prompt
	if len(messages) == 0 {
		messages = defaultGenerationMessages(snapshot, previousScript)
	}

	rendered := make([]domain.PromptMessage, 0, len(messages)+1)
	for _, msg := range messages {
		content, err := executeTemplate(msg.Content, data)
		if err != nil {
			return nil, err
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		rendered = append(rendered, domain.PromptMessage{Role: msg.Role, Content: content})
	}

	if !hasUserMessage(rendered) {
		rendered = append(rendered, domain.PromptMessage{
			Role:    "user",
			Content: "Generate AppleScript code to: " + strings.TrimSpace(instruction),
		})
	}

	return rendered, nil
}

// verificationMessages renders the single verification call issued per run
// when --verify is set.
func verificationMessages(instruction, script string, result *domain.ExecutionResult) []domain.PromptMessage {
	var output strings.Builder
	if result != nil {
		fmt.Fprintf(&output, "exit code: %d\n", result.ExitCode)
		if result.Stdout != "" {
			fmt.Fprintf(&output, "stdout:\n%s\n", result.Stdout)
		}
		if result.Stderr != "" {
			fmt.Fprintf(&output, "stderr:\n%s\n", result.Stderr)
		}
	}

	return []domain.PromptMessage{
		{
			Role: "system",
			Content: `You review AppleScript automation runs. Given the user's request, the executed script, and its output, judge whether the run achieved the request.
Answer with a first line of exactly "VERDICT: pass" or "VERDICT: fail", followed by one short line of feedback.`,
		},
		{
			Role: "user",
			Content: fmt.Sprintf("Request: %s\n\nScript:\n%s\n\nExecution:\n%s",
				strings.TrimSpace(instruction), script, strings.TrimSpace(output.String())),
		},
	}
}

// parseVerdict extracts the verification outcome from a model reply. A reply
// without a recognizable verdict line is treated as a failed verification
// with the raw reply as feedback.
func parseVerdict(reply string) domain.Verification {
	lines := strings.Split(strings.TrimSpace(reply), "\n")
	verdict := domain.Verification{Passed: false}
	var feedback []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if i == 0 && strings.HasPrefix(lower, "verdict:") {
			verdict.Passed = strings.Contains(lower, "pass")
			continue
		}
		if trimmed != "" {
			feedback = append(feedback, trimmed)
		}
	}
	verdict.Feedback = strings.Join(feedback, " ")
	return verdict
}

type templateData struct {
	Instruction    string
	OSVersion      string
	User           string
	FrontmostApp   string
	RunningApps    string
	PreviousScript string
}

func executeTemplate(raw string, data templateData) (string, error) {
	tmpl, err := template.New("prompt").Parse(raw)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hasUserMessage(messages []domain.PromptMessage) bool {
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "user") {
			return true
		}
	}
	return false
}

func defaultGenerationMessages(snapshot domain.ContextSnapshot, previousScript string) []domain.PromptMessage {
	messages := []domain.PromptMessage{
		{Role: "system", Content: generationSystemPrompt + "\n" + contextSnippet(snapshot)},
	}
	if previousScript != "" {
		messages = append(messages,
			domain.PromptMessage{Role: "system", Content: "Here's a previously successful solution for reference:"},
			domain.PromptMessage{Role: "user", Content: previousScript},
		)
	}
	messages = append(messages, domain.PromptMessage{Role: "user", Content: "Generate AppleScript code to: {{.Instruction}}"})
	return messages
}

func contextSnippet(snapshot domain.ContextSnapshot) string {
	var lines []string
	if snapshot.OSVersion != "" {
		lines = append(lines, "System: "+snapshot.OSVersion)
	}
	if snapshot.FrontmostApp != "" {
		lines = append(lines, "Frontmost application: "+snapshot.FrontmostApp)
	}
	if apps := strings.Join(snapshot.RunningApps, ", "); apps != "" {
		lines = append(lines, "Running applications: "+apps)
	}
	if len(lines) == 0 {
		return ""
	}
	return "Current environment:\n" + strings.Join(lines, "\n")
}

const generationSystemPrompt = `You are an expert AppleScript developer. Generate ONLY the raw AppleScript code with no explanations or formatting.
Do NOT wrap the code in markdown code blocks or any other formatting.
Focus on common macOS automation tasks like:
- Opening applications
- Controlling system settings
- Managing windows
- Basic file operations
- System notifications
- Controlling applications like Numbers, Safari, Finder, etc.
Use proper AppleScript syntax, include necessary delays and activation commands, and handle application-specific requirements (like Numbers' table structure: document > sheet > table > cells addressed by column name and row index).`
