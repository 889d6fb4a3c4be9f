package ports

import (
	"context"
	"io"

	"ashasphere/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// StreamingSession is an active provider websocket session.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// TranscriptionProvider starts streaming transcription sessions.
type TranscriptionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// TranscriptRules normalizes a final transcript.
type TranscriptRules interface {
	Apply(text string) (string, error)
}

// Speaker synthesizes one utterance and blocks until it finishes or ctx ends.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// CaptureListener receives capture snapshots in order.
type CaptureListener func(event domain.CaptureEvent)

// Capturer runs at most one speech-to-text session at a time.
type Capturer interface {
	Available() bool
	Start(ctx context.Context, listener CaptureListener) error
	Cancel()
}

// PlaybackListener receives playback lifecycle events.
type PlaybackListener func(kind domain.PlaybackEventKind)

// Player plays at most one utterance at a time; newest wins.
type Player interface {
	Available() bool
	Play(ctx context.Context, text string, listener PlaybackListener) error
	Stop()
}

// ReplyService turns a transcript into an empathetic reply.
type ReplyService interface {
	GetReply(ctx context.Context, transcript string, prior domain.MoodSample) (domain.Reply, error)
}

// KeyValueStore is a flat durable string-keyed store.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// JournalWriter is the subset of the persistence gateway the session writes through.
type JournalWriter interface {
	UpsertMood(ctx context.Context, sample domain.MoodData) error
	AppendJournal(ctx context.Context, entry domain.JournalEntry) error
	AppendFeedback(ctx context.Context, feedback domain.FeedbackData) error
}

// HistoryReader loads the persisted collections.
type HistoryReader interface {
	Journal(ctx context.Context) ([]domain.JournalEntry, error)
	MoodHistory(ctx context.Context) ([]domain.MoodData, error)
	FeedbackHistory(ctx context.Context) ([]domain.FeedbackData, error)
	Settings(ctx context.Context) (domain.Settings, error)
}

// SettingsStore persists the profile settings record.
type SettingsStore interface {
	Settings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	StageChanged(stage domain.Stage, reason domain.StageReason)
	InterimTranscript(text string)
	FinalTranscript(text string)
	ReplyReady(reply domain.Reply)
	PlaybackChanged(playing bool)
	SessionError(code domain.ErrorCode, detail string)
}
