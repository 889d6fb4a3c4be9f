package usecase

import (
	"context"
	"errors"
	"time"

	"ashasphere/internal/domain"
	"ashasphere/internal/insights"
	"ashasphere/internal/ports"
)

// History serves the read side: past entries and insights computed from
// whatever is persisted right now.
type History struct {
	reader ports.HistoryReader
	now    func() time.Time
}

func NewHistory(reader ports.HistoryReader, now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	return &History{reader: reader, now: now}
}

// Entries returns the journal newest first.
func (h *History) Entries(ctx context.Context) ([]domain.JournalEntry, error) {
	entries, err := h.reader.Journal(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.JournalEntry, len(entries))
	for i, entry := range entries {
		out[len(entries)-1-i] = entry
	}
	return out, nil
}

// Moods returns the per-day mood history in stored order.
func (h *History) Moods(ctx context.Context) ([]domain.MoodData, error) {
	return h.reader.MoodHistory(ctx)
}

// Feedback returns every feedback submission in stored order.
func (h *History) Feedback(ctx context.Context) ([]domain.FeedbackData, error) {
	return h.reader.FeedbackHistory(ctx)
}

// Insights recomputes every summary from the current collections. A corrupt
// collection counts as empty so the others still contribute.
func (h *History) Insights(ctx context.Context) (insights.Summary, error) {
	entries, err := tolerateCorrupt(h.reader.Journal(ctx))
	if err != nil {
		return insights.Summary{}, err
	}
	moods, err := tolerateCorrupt(h.reader.MoodHistory(ctx))
	if err != nil {
		return insights.Summary{}, err
	}
	feedback, err := tolerateCorrupt(h.reader.FeedbackHistory(ctx))
	if err != nil {
		return insights.Summary{}, err
	}
	settings, err := h.reader.Settings(ctx)
	if err != nil && !errors.Is(err, domain.ErrCorruptRecord) {
		return insights.Summary{}, err
	}
	return insights.Summarize(entries, moods, feedback, settings, h.now()), nil
}

func tolerateCorrupt[T any](items []T, err error) ([]T, error) {
	if errors.Is(err, domain.ErrCorruptRecord) {
		return []T{}, nil
	}
	return items, err
}
