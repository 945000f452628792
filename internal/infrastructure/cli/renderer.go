package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/osai-go/internal/domain"
)

// RenderResponse prints the response in a friendly, ASCII-only format.
func RenderResponse(out io.Writer, resp domain.AutomationResponse) {
	if resp.ContextInformation.FrontmostApp != "" {
		fmt.Fprintf(out, "Frontmost app: %s\n", resp.ContextInformation.FrontmostApp)
	}
	if resp.ReusedSolution {
		fmt.Fprintln(out, "Note: prompt seeded with a previously successful script")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Generated Script:")
	for _, line := range strings.Split(resp.Script, "\n") {
		fmt.Fprintf(out, "  %s\n", line)
	}

	fmt.Fprintf(out, "\nRisk: %s (%s)\n", strings.ToUpper(string(resp.RiskAssessment.Level)), resp.RiskAssessment.Action)
	for _, reason := range resp.RiskAssessment.Reasons {
		fmt.Fprintf(out, " - %s\n", reason)
	}

	if resp.ExecutionResult != nil {
		renderExecution(out, resp.ExecutionResult)
	} else {
		fmt.Fprintln(out, "\nScript was not executed (preview mode or confirmation pending).")
	}

	if resp.Verification != nil {
		if resp.Verification.Passed {
			fmt.Fprintln(out, "\nVerification: passed")
		} else {
			fmt.Fprintln(out, "\nVerification: failed")
		}
		if resp.Verification.Feedback != "" {
			fmt.Fprintf(out, "  %s\n", resp.Verification.Feedback)
		}
	}
}

func renderExecution(out io.Writer, result *domain.ExecutionResult) {
	if result.Ran {
		fmt.Fprintf(out, "\nScript executed in %dms.\n", result.DurationMS)
	} else if result.Err != nil {
		fmt.Fprintf(out, "\nScript failed: %v\n", result.Err)
	}
	if result.Stdout != "" {
		fmt.Fprintln(out, "\nstdout:")
		fmt.Fprintln(out, result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprintln(out, "\nstderr:")
		fmt.Fprintln(out, result.Stderr)
	}
	if result.Guidance != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, result.Guidance)
	}
}
