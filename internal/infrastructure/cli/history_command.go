package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/osai-go/internal/app"
	"github.com/doeshing/osai-go/internal/domain"
)

const msgNoHistoryRecorded = "No solutions recorded yet."

// newHistoryCommand creates the history command with all subcommands
func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past automation attempts",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistorySearchCommand(container),
		newHistoryStatsCommand(container),
		newHistoryExportCommand(container),
		newHistoryClearCommand(container),
		newHistoryPruneCommand(container),
	)

	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent automation attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), container, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

func newHistorySearchCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search past attempts by instruction or script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), container, limit, args[0])
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistorySearchLimit, "Limit search results")
	return cmd
}

func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show success rate and most repeated instructions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryStats(cmd.OutOrStdout(), container)
		},
	}
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export solutions to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Store.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("failed to export solutions to %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported solutions to %s\n", args[0])
			return nil
		},
	}
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Store.Clear(); err != nil {
				return fmt.Errorf("failed to clear solutions: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Solution history cleared.")
			return nil
		},
	}
}

func newHistoryPruneCommand(container *app.Container) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete solutions older than N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be > 0")
			}
			removed, err := container.Store.Prune(days)
			if err != nil {
				return fmt.Errorf("failed to prune old solutions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d solutions older than %d days.\n", removed, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", domain.DefaultHistoryRetainDays, "Days of history to keep")
	return cmd
}

func listHistoryEntries(out io.Writer, container *app.Container, limit int, search string) error {
	records, err := container.Store.Records(limit, search)
	if err != nil {
		return fmt.Errorf("failed to retrieve solutions: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%s | %s | %s | %s\n",
			humanize.Time(rec.Timestamp),
			rec.Model,
			outcomeLabel(rec),
			rec.Instruction)
	}
	return nil
}

func outcomeLabel(rec domain.SolutionRecord) string {
	switch {
	case !rec.Executed:
		return "skipped"
	case !rec.Success:
		return "failed"
	case rec.Verified != nil && !*rec.Verified:
		return "unverified"
	default:
		return "ok"
	}
}

func showHistoryStats(out io.Writer, container *app.Container) error {
	stats, err := container.Store.Stats()
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	if stats.Total == 0 {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return nil
	}

	fmt.Fprintf(out, "Attempts: %d\nExecuted: %d\nSuccess rate: %.1f%%\nVerified: %d\n",
		stats.Total,
		stats.Executed,
		successRate(stats.Succeeded, stats.Executed),
		stats.Verified)

	// Limit 0 fetches everything; the headline counters above cover the
	// whole store and the top list must match that window.
	records, err := container.Store.Records(0, "")
	if err != nil {
		return fmt.Errorf("failed to retrieve solutions: %w", err)
	}
	top := topInstructions(records, 5)
	if len(top) > 0 {
		fmt.Fprintln(out, "Top instructions:")
		for _, entry := range top {
			fmt.Fprintf(out, "  %s (%d)\n", entry.instruction, entry.count)
		}
	}
	return nil
}

func successRate(succeeded, executed int) float64 {
	if executed == 0 {
		return 0.0
	}
	return float64(succeeded) / float64(executed) * 100.0
}

type instructionCount struct {
	instruction string
	count       int
}

func topInstructions(records []domain.SolutionRecord, limit int) []instructionCount {
	freq := make(map[string]int)
	for _, rec := range records {
		freq[rec.Instruction]++
	}

	stats := make([]instructionCount, 0, len(freq))
	for instruction, count := range freq {
		stats = append(stats, instructionCount{instruction: instruction, count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count == stats[j].count {
			return stats[i].instruction < stats[j].instruction
		}
		return stats[i].count > stats[j].count
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}
