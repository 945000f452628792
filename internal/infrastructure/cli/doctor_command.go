package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/osai-go/internal/app"
	"github.com/doeshing/osai-go/internal/domain"
)

// newDoctorCommand creates the doctor command
func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.Doctor.Run(cmd.Context())

			// Display report even if there were errors
			displayDoctorReport(cmd.OutOrStdout(), report)

			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			return nil
		},
	}
}

func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}
