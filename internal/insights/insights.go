package insights

import (
	"math"
	"sort"
	"time"

	"ashasphere/internal/domain"
)

// MoodDistribution counts mood-history days per sentiment bucket.
type MoodDistribution struct {
	Happy    int `json:"happy"`
	Neutral  int `json:"neutral"`
	Stressed int `json:"stressed"`
	Total    int `json:"total"`
}

// FeedbackSummary aggregates feedback history. HasData is false when there is
// nothing to average; AverageRating and TopEmoji are then zero values.
type FeedbackSummary struct {
	Count         int     `json:"count"`
	HasData       bool    `json:"hasData"`
	AverageRating float64 `json:"averageRating"`
	TopEmoji      string  `json:"topEmoji"`
}

// Progress holds the simple activity counters.
type Progress struct {
	JournalEntries int `json:"journalEntries"`
	Conversations  int `json:"conversations"`
	GoalsCompleted int `json:"goalsCompleted"`
}

// Streak describes consecutive days with a mood sample.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Summary bundles every insight for one history snapshot.
type Summary struct {
	Moods           MoodDistribution `json:"moods"`
	Feedback        FeedbackSummary  `json:"feedback"`
	HappyDayPercent int              `json:"happyDayPercent"`
	Progress        Progress         `json:"progress"`
	Streak          Streak           `json:"streak"`
}

// Distribution counts samples per sentiment. Unknown sentiments only count
// towards Total.
func Distribution(moods []domain.MoodData) MoodDistribution {
	var dist MoodDistribution
	for _, mood := range moods {
		switch mood.Sentiment {
		case domain.SentimentHappy:
			dist.Happy++
		case domain.SentimentNeutral:
			dist.Neutral++
		case domain.SentimentStressed:
			dist.Stressed++
		}
		dist.Total++
	}
	return dist
}

// AverageRating is the arithmetic mean of ratings; ok is false for no data.
func AverageRating(feedback []domain.FeedbackData) (float64, bool) {
	if len(feedback) == 0 {
		return 0, false
	}
	sum := 0
	for _, item := range feedback {
		sum += item.Rating
	}
	return float64(sum) / float64(len(feedback)), true
}

// TopEmoji returns the most frequent emoji. Ties go to the emoji seen first.
func TopEmoji(feedback []domain.FeedbackData) (string, bool) {
	if len(feedback) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(domain.EmojiScale))
	order := make([]string, 0, len(domain.EmojiScale))
	for _, item := range feedback {
		if _, seen := counts[item.Emoji]; !seen {
			order = append(order, item.Emoji)
		}
		counts[item.Emoji]++
	}
	best := order[0]
	for _, emoji := range order[1:] {
		if counts[emoji] > counts[best] {
			best = emoji
		}
	}
	return best, true
}

// SummarizeFeedback combines AverageRating and TopEmoji.
func SummarizeFeedback(feedback []domain.FeedbackData) FeedbackSummary {
	summary := FeedbackSummary{Count: len(feedback)}
	summary.AverageRating, summary.HasData = AverageRating(feedback)
	summary.TopEmoji, _ = TopEmoji(feedback)
	return summary
}

// HappyDayPercent is round(happy / max(total, 1) * 100).
func HappyDayPercent(moods []domain.MoodData) int {
	happy := 0
	for _, mood := range moods {
		if mood.Sentiment == domain.SentimentHappy {
			happy++
		}
	}
	total := len(moods)
	if total < 1 {
		total = 1
	}
	return int(math.Round(float64(happy) / float64(total) * 100))
}

// ProgressOf counts journal activity. Every entry is one conversation turn.
func ProgressOf(entries []domain.JournalEntry, settings domain.Settings) Progress {
	progress := Progress{
		JournalEntries: len(entries),
		Conversations:  len(entries),
	}
	if settings.GoalCompleted {
		progress.GoalsCompleted = 1
	}
	return progress
}

// Streaks measures runs of consecutive calendar days in the mood history.
// The current streak counts back from today, or from yesterday when today has
// no sample yet. Dates that do not parse are skipped.
func Streaks(moods []domain.MoodData, today time.Time) Streak {
	days := make(map[time.Time]struct{}, len(moods))
	for _, mood := range moods {
		day, err := time.Parse(domain.DayLayout, mood.Date)
		if err != nil {
			continue
		}
		days[day] = struct{}{}
	}
	if len(days) == 0 {
		return Streak{}
	}

	sorted := make([]time.Time, 0, len(days))
	for day := range days {
		sorted = append(sorted, day)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var streak Streak
	run := 0
	for i, day := range sorted {
		if i > 0 && sorted[i-1].AddDate(0, 0, 1).Equal(day) {
			run++
		} else {
			run = 1
		}
		if run > streak.Longest {
			streak.Longest = run
		}
	}

	cursor, _ := time.Parse(domain.DayLayout, today.Format(domain.DayLayout))
	if _, ok := days[cursor]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for {
		if _, ok := days[cursor]; !ok {
			break
		}
		streak.Current++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// Summarize computes every insight at once.
func Summarize(entries []domain.JournalEntry, moods []domain.MoodData, feedback []domain.FeedbackData, settings domain.Settings, today time.Time) Summary {
	return Summary{
		Moods:           Distribution(moods),
		Feedback:        SummarizeFeedback(feedback),
		HappyDayPercent: HappyDayPercent(moods),
		Progress:        ProgressOf(entries, settings),
		Streak:          Streaks(moods, today),
	}
}
