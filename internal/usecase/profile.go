package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ashasphere/internal/domain"
	"ashasphere/internal/ports"
)

// ErrBlankSetting is returned when a name or goal is set to blank text.
var ErrBlankSetting = errors.New("setting cannot be blank")

// Profile edits the persisted settings. Each change is written immediately.
type Profile struct {
	store ports.SettingsStore
	now   func() time.Time

	mu sync.Mutex
}

func NewProfile(store ports.SettingsStore, now func() time.Time) *Profile {
	if now == nil {
		now = time.Now
	}
	return &Profile{store: store, now: now}
}

func (p *Profile) Settings(ctx context.Context) (domain.Settings, error) {
	return p.store.Settings(ctx)
}

// SetUserName stores the trimmed name.
func (p *Profile) SetUserName(ctx context.Context, name string) (domain.Settings, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Settings{}, fmt.Errorf("user name: %w", ErrBlankSetting)
	}
	return p.update(ctx, func(settings *domain.Settings) { settings.UserName = name })
}

// SetDailyGoal replaces the goal and marks it not yet completed.
func (p *Profile) SetDailyGoal(ctx context.Context, goal string) (domain.Settings, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return domain.Settings{}, fmt.Errorf("daily goal: %w", ErrBlankSetting)
	}
	return p.update(ctx, func(settings *domain.Settings) {
		settings.DailyGoal = goal
		settings.GoalCompleted = false
	})
}

// CompleteGoal marks the daily goal done.
func (p *Profile) CompleteGoal(ctx context.Context) (domain.Settings, error) {
	return p.update(ctx, func(settings *domain.Settings) { settings.GoalCompleted = true })
}

// Greeting greets the user by name for the current time of day.
func (p *Profile) Greeting(ctx context.Context) (string, error) {
	settings, err := p.store.Settings(ctx)
	if err != nil {
		return Greeting(domain.DefaultUserName, p.now()), err
	}
	return Greeting(settings.UserName, p.now()), nil
}

func (p *Profile) update(ctx context.Context, change func(*domain.Settings)) (domain.Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	settings, err := p.store.Settings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	change(&settings)
	if err := p.store.SaveSettings(ctx, settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Greeting picks morning before noon, afternoon before five, else evening.
func Greeting(name string, at time.Time) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultUserName
	}
	switch hour := at.Hour(); {
	case hour < 12:
		return "Good morning, " + name + "!"
	case hour < 17:
		return "Good afternoon, " + name + "!"
	default:
		return "Good evening, " + name + "!"
	}
}
