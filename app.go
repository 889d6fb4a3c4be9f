package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"ashasphere/internal/bootstrap"
	"ashasphere/internal/config"
	"ashasphere/internal/domain"
	"ashasphere/internal/insights"
	"ashasphere/internal/usecase"
)

const (
	eventStage    = "asha:stage"
	eventInterim  = "asha:interim"
	eventFinal    = "asha:final"
	eventReply    = "asha:reply"
	eventPlayback = "asha:playback"
	eventError    = "asha:error"
)

var errNotInitialized = errors.New("application is not initialized")

// App is the Wails application root. Its exported methods are bound to the
// frontend and it doubles as the session's event sink.
type App struct {
	ctx  context.Context
	emit func(ctx context.Context, name string, data ...interface{})

	services bootstrap.Services
	cfg      config.Config
	bootErr  error
}

func NewApp() *App {
	return &App{emit: runtime.EventsEmit}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}
	a.attach(services)
}

func (a *App) attach(services bootstrap.Services) {
	a.services = services
	a.cfg = services.Config
	a.StageChanged(domain.StageIdle, domain.StageReasonReady)
}

func (a *App) shutdown(_ context.Context) {
	if a.services.Session != nil {
		a.services.Session.Reset()
	}
	if err := a.services.Close(); err != nil && a.services.Logger != nil {
		a.services.Logger.Error(context.Background(), "closing store failed", "error", err)
	}
}

// GetStatus returns the current session snapshot.
func (a *App) GetStatus() domain.Status {
	if a.services.Session == nil {
		if a.bootErr != nil {
			return domain.Status{Stage: domain.StageIdle, Notice: a.bootErr.Error()}
		}
		return domain.Status{Stage: domain.StageIdle}
	}
	return a.services.Session.Status()
}

// StartRecording begins a capture from idle.
func (a *App) StartRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.services.Session.BeginCapture(a.context()); err != nil {
		return a.services.Session.Status(), err
	}
	return a.services.Session.Status(), nil
}

// Replay speaks the current reply again.
func (a *App) Replay() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Session.Replay(a.context())
}

// ContinueToFeedback skips the rest of the reply playback.
func (a *App) ContinueToFeedback() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Session.ContinueToFeedback()
}

// SaveEntry stores the current exchange without feedback.
func (a *App) SaveEntry() (domain.JournalEntry, error) {
	if err := a.requireReady(); err != nil {
		return domain.JournalEntry{}, err
	}
	return a.services.Session.SaveEntry(a.context())
}

// SelectFeedback maps a slider position to an emoji rating.
func (a *App) SelectFeedback(position float64) (domain.Feedback, error) {
	if err := a.requireReady(); err != nil {
		return domain.Feedback{}, err
	}
	return a.services.Session.SelectFeedback(position)
}

// SubmitFeedback saves the entry with feedback and returns the wisdom stage.
func (a *App) SubmitFeedback(helpfulness int) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	err := a.services.Session.SubmitFeedback(a.context(), helpfulness)
	return a.services.Session.Status(), err
}

func (a *App) SkipFeedback() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Session.SkipFeedback()
}

func (a *App) Done() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Session.Done()
}

// Reset abandons the current turn from any stage.
func (a *App) Reset() {
	if a.services.Session != nil {
		a.services.Session.Reset()
	}
}

// EmojiScale lists the feedback slider buckets, most positive first.
func (a *App) EmojiScale() []domain.EmojiOption {
	return domain.EmojiScale
}

func (a *App) Greeting() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	return a.services.Profile.Greeting(a.context())
}

func (a *App) GetSettings() (domain.Settings, error) {
	if err := a.requireReady(); err != nil {
		return domain.Settings{}, err
	}
	return a.services.Profile.Settings(a.context())
}

func (a *App) SetUserName(name string) (domain.Settings, error) {
	if err := a.requireReady(); err != nil {
		return domain.Settings{}, err
	}
	return a.services.Profile.SetUserName(a.context(), name)
}

func (a *App) SetDailyGoal(goal string) (domain.Settings, error) {
	if err := a.requireReady(); err != nil {
		return domain.Settings{}, err
	}
	return a.services.Profile.SetDailyGoal(a.context(), goal)
}

func (a *App) CompleteGoal() (domain.Settings, error) {
	if err := a.requireReady(); err != nil {
		return domain.Settings{}, err
	}
	return a.services.Profile.CompleteGoal(a.context())
}

// GetJournal returns past entries, newest first.
func (a *App) GetJournal() ([]domain.JournalEntry, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.services.History.Entries(a.context())
}

func (a *App) GetMoodHistory() ([]domain.MoodData, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.services.History.Moods(a.context())
}

func (a *App) GetInsights() (insights.Summary, error) {
	if err := a.requireReady(); err != nil {
		return insights.Summary{}, err
	}
	return a.services.History.Insights(a.context())
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	return map[string]string{
		"provider":    "Deepgram",
		"model":       a.cfg.Deepgram.Model,
		"language":    a.cfg.Deepgram.Language,
		"replyServer": a.cfg.Reply.BaseURL,
		"store":       a.cfg.Store.Engine,
		"voice":       a.cfg.Playback.Voice,
		"capture":     fmt.Sprintf("%t", a.services.Capabilities.Capture),
		"playback":    fmt.Sprintf("%t", a.services.Capabilities.Playback),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services.Session == nil {
		return errNotInitialized
	}
	return nil
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

func (a *App) send(name string, payload interface{}) {
	if a.ctx == nil || a.emit == nil {
		return
	}
	a.emit(a.ctx, name, payload)
}

// StageChanged emits session transitions to the frontend.
func (a *App) StageChanged(stage domain.Stage, reason domain.StageReason) {
	a.send(eventStage, map[string]string{
		"stage":   string(stage),
		"reason":  string(reason),
		"message": stageMessage(reason),
	})
}

func (a *App) InterimTranscript(text string) {
	a.send(eventInterim, map[string]string{"text": text})
}

func (a *App) FinalTranscript(text string) {
	a.send(eventFinal, map[string]string{"text": text})
}

func (a *App) ReplyReady(reply domain.Reply) {
	a.send(eventReply, reply)
}

func (a *App) PlaybackChanged(playing bool) {
	a.send(eventPlayback, map[string]bool{"playing": playing})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	a.send(eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func stageMessage(reason domain.StageReason) string {
	switch reason {
	case domain.StageReasonReady:
		return "Tap the mic to start"
	case domain.StageReasonCaptureStarted:
		return "Listening..."
	case domain.StageReasonCaptureFailed:
		return usecase.CaptureFailedNotice
	case domain.StageReasonTranscriptReady:
		return "Asha is thinking..."
	case domain.StageReasonReplyReady, domain.StageReasonReplaying:
		return "Asha is speaking"
	case domain.StageReasonReplyDegraded:
		return "Asha is offline right now"
	case domain.StageReasonReplyFailed:
		return usecase.ReplyFailedNotice
	case domain.StageReasonPlaybackEnded, domain.StageReasonFeedbackAsked:
		return "How are you feeling now?"
	case domain.StageReasonFeedbackSaved:
		return "Thanks for sharing"
	case domain.StageReasonFeedbackSkipped, domain.StageReasonSessionCompleted, domain.StageReasonReset:
		return "Ready when you are"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeCapture:
		return "Speech capture issue"
	case domain.ErrorCodeReply:
		return "Reply service unavailable"
	case domain.ErrorCodePlayback:
		return "Speech playback issue"
	case domain.ErrorCodeStorage:
		return "Could not save your journal"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
