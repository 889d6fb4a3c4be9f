package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx context.Context, backend Backend) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journal entries, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("invalid --limit %d", limit)
			}
			entries, err := backend.History.Entries(ctx)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No journal entries yet")
				return nil
			}
			for i, entry := range entries {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, formatEntry(entry))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	return cmd
}

func newMoodsCommand(ctx context.Context, backend Backend) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "moods",
		Short: "Show the per-day mood history.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			moods, err := backend.History.Moods(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), moods)
			}

			out := cmd.OutOrStdout()
			if len(moods) == 0 {
				fmt.Fprintln(out, "No mood history yet")
				return nil
			}
			for _, mood := range moods {
				fmt.Fprintf(out, "%s  %d  %s\n", mood.Date, mood.Mood, mood.Sentiment)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	return cmd
}

func newInsightsCommand(ctx context.Context, backend Backend) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Summarize moods, feedback, progress and streaks.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := backend.History.Insights(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Moods: %d happy, %d neutral, %d stressed (%d days)\n",
				summary.Moods.Happy, summary.Moods.Neutral, summary.Moods.Stressed, summary.Moods.Total)
			fmt.Fprintf(out, "Happy days: %d%%\n", summary.HappyDayPercent)
			if summary.Feedback.HasData {
				fmt.Fprintf(out, "Feedback: %d responses, average %.1f, most common %s\n",
					summary.Feedback.Count, summary.Feedback.AverageRating, summary.Feedback.TopEmoji)
			} else {
				fmt.Fprintln(out, "Feedback: none yet")
			}
			fmt.Fprintf(out, "Progress: %d entries, %d conversations, %d goals completed\n",
				summary.Progress.JournalEntries, summary.Progress.Conversations, summary.Progress.GoalsCompleted)
			fmt.Fprintf(out, "Streak: %d current, %d longest\n", summary.Streak.Current, summary.Streak.Longest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	return cmd
}
