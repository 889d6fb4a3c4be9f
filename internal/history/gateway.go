package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ashasphere/internal/domain"
	"ashasphere/internal/logging"
	"ashasphere/internal/ports"
)

// Kind names one durable record.
type Kind string

const (
	KindJournal     Kind = "asha-journal"
	KindMoodHistory Kind = "asha-mood-history"
	KindFeedback    Kind = "asha-feedback-history"
	KindSettings    Kind = "asha-settings"
)

// ErrCorruptRecord is returned when a stored record cannot be decoded.
var ErrCorruptRecord = domain.ErrCorruptRecord

// Gateway loads and saves the collections through a key-value store. Writes
// are serialized so each collection applies them in the order issued.
type Gateway struct {
	kv     ports.KeyValueStore
	logger logging.Logger

	mu sync.Mutex
}

func NewGateway(kv ports.KeyValueStore, logger logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gateway{kv: kv, logger: logger.With("component", "history")}
}

func (g *Gateway) Journal(ctx context.Context) ([]domain.JournalEntry, error) {
	return loadList[domain.JournalEntry](ctx, g.kv, KindJournal)
}

func (g *Gateway) MoodHistory(ctx context.Context) ([]domain.MoodData, error) {
	return loadList[domain.MoodData](ctx, g.kv, KindMoodHistory)
}

func (g *Gateway) FeedbackHistory(ctx context.Context) ([]domain.FeedbackData, error) {
	return loadList[domain.FeedbackData](ctx, g.kv, KindFeedback)
}

// Settings returns the stored settings, falling back to defaults for a
// missing record or blank fields.
func (g *Gateway) Settings(ctx context.Context) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	raw, ok, err := g.kv.Get(ctx, string(KindSettings))
	if err != nil {
		return settings, fmt.Errorf("load %s: %w", KindSettings, err)
	}
	if !ok {
		return settings, nil
	}
	var stored domain.Settings
	if err := json.Unmarshal(raw, &stored); err != nil {
		return settings, fmt.Errorf("load %s: %w: %v", KindSettings, ErrCorruptRecord, err)
	}
	if stored.UserName != "" {
		settings.UserName = stored.UserName
	}
	if stored.DailyGoal != "" {
		settings.DailyGoal = stored.DailyGoal
	}
	settings.GoalCompleted = stored.GoalCompleted
	return settings, nil
}

func (g *Gateway) SaveSettings(ctx context.Context, settings domain.Settings) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return save(ctx, g.kv, KindSettings, settings)
}

// AppendJournal adds one entry to the end of the journal.
func (g *Gateway) AppendJournal(ctx context.Context, entry domain.JournalEntry) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	entries, err := loadForWrite[domain.JournalEntry](ctx, g, KindJournal)
	if err != nil {
		return err
	}
	return save(ctx, g.kv, KindJournal, append(entries, entry))
}

// AppendFeedback adds one feedback submission to the feedback history.
func (g *Gateway) AppendFeedback(ctx context.Context, feedback domain.FeedbackData) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	items, err := loadForWrite[domain.FeedbackData](ctx, g, KindFeedback)
	if err != nil {
		return err
	}
	return save(ctx, g.kv, KindFeedback, append(items, feedback))
}

// UpsertMood stores sample as the only mood sample for its date; any earlier
// sample for that date is replaced.
func (g *Gateway) UpsertMood(ctx context.Context, sample domain.MoodData) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	moods, err := loadForWrite[domain.MoodData](ctx, g, KindMoodHistory)
	if err != nil {
		return err
	}
	return save(ctx, g.kv, KindMoodHistory, ReplaceDay(moods, sample))
}

// ReplaceDay returns moods without any sample for sample.Date, followed by
// sample.
func ReplaceDay(moods []domain.MoodData, sample domain.MoodData) []domain.MoodData {
	out := make([]domain.MoodData, 0, len(moods)+1)
	for _, mood := range moods {
		if mood.Date != sample.Date {
			out = append(out, mood)
		}
	}
	return append(out, sample)
}

// loadForWrite reads a collection before rewriting it. A corrupt collection
// is replaced rather than blocking new history.
func loadForWrite[T any](ctx context.Context, g *Gateway, kind Kind) ([]T, error) {
	items, err := loadList[T](ctx, g.kv, kind)
	if err == nil {
		return items, nil
	}
	if errors.Is(err, ErrCorruptRecord) {
		g.logger.Warn(ctx, "overwriting corrupt collection", "kind", kind, "error", err)
		return []T{}, nil
	}
	return nil, err
}

func loadList[T any](ctx context.Context, kv ports.KeyValueStore, kind Kind) ([]T, error) {
	raw, ok, err := kv.Get(ctx, string(kind))
	if err != nil {
		return []T{}, fmt.Errorf("load %s: %w", kind, err)
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return []T{}, fmt.Errorf("load %s: %w: %v", kind, ErrCorruptRecord, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func save(ctx context.Context, kv ports.KeyValueStore, kind Kind, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := kv.Set(ctx, string(kind), raw); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}
