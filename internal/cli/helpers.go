package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ashasphere/internal/domain"
)

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func formatEntry(entry domain.JournalEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s (mood %d)", entry.Date, entry.Time, entry.Sentiment, entry.Mood)
	if entry.Feedback != nil {
		fmt.Fprintf(&b, "  %s helpful %d/5", entry.Feedback.Emoji, entry.Feedback.Helpfulness)
	}
	fmt.Fprintf(&b, "\n  you:  %s\n  asha: %s", entry.Transcript, entry.Response)
	return b.String()
}

func formatSettings(settings domain.Settings) string {
	status := "pending"
	if settings.GoalCompleted {
		status = "done"
	}
	return fmt.Sprintf("name: %s\ngoal: %s [%s]", settings.UserName, settings.DailyGoal, status)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
