package domain

// Stage models the journaling session lifecycle.
type Stage string

const (
	StageIdle               Stage = "idle"
	StageCapturing          Stage = "capturing"
	StageAwaitingReply      Stage = "awaitingReply"
	StageResponding         Stage = "responding"
	StageCollectingFeedback Stage = "collectingFeedback"
	StageBrowsingWisdom     Stage = "browsingWisdom"
)

// StageReason provides a structured reason for stage transitions.
type StageReason string

const (
	StageReasonReady            StageReason = "ready"
	StageReasonCaptureStarted   StageReason = "capture_started"
	StageReasonCaptureFailed    StageReason = "capture_failed"
	StageReasonTranscriptReady  StageReason = "transcript_ready"
	StageReasonReplyReady       StageReason = "reply_ready"
	StageReasonReplyDegraded    StageReason = "reply_degraded"
	StageReasonReplyFailed      StageReason = "reply_failed"
	StageReasonReplaying        StageReason = "replaying"
	StageReasonPlaybackEnded    StageReason = "playback_ended"
	StageReasonFeedbackAsked    StageReason = "feedback_requested"
	StageReasonFeedbackSaved    StageReason = "feedback_saved"
	StageReasonFeedbackSkipped  StageReason = "feedback_skipped"
	StageReasonSessionCompleted StageReason = "session_completed"
	StageReasonReset            StageReason = "reset"
)

// ErrorCode identifies non-fatal backend errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup  ErrorCode = "startup"
	ErrorCodeCapture  ErrorCode = "capture"
	ErrorCodeReply    ErrorCode = "reply"
	ErrorCodePlayback ErrorCode = "playback"
	ErrorCodeStorage  ErrorCode = "storage"
)

// TranscriptKind identifies whether a stream event is partial or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental transcription output from a provider.
type TranscriptEvent struct {
	Kind          TranscriptKind `json:"kind"`
	Text          string         `json:"text"`
	IsSpeechFinal bool           `json:"isSpeechFinal"`
}

// CaptureEventKind tags capture coordinator output.
type CaptureEventKind string

const (
	CaptureEventInterim CaptureEventKind = "interim"
	CaptureEventFinal   CaptureEventKind = "final"
	CaptureEventFailed  CaptureEventKind = "failed"
)

// CaptureEvent is one snapshot emitted during a capture session. Text is the
// full transcript so far, never a delta. Err is set only for failed events.
type CaptureEvent struct {
	Kind CaptureEventKind
	Text string
	Err  error
}

// PlaybackEventKind tags playback coordinator lifecycle events.
type PlaybackEventKind string

const (
	PlaybackStarted PlaybackEventKind = "started"
	PlaybackEnded   PlaybackEventKind = "ended"
)

// Status summarizes the session state for the UI.
type Status struct {
	Stage             Stage        `json:"stage"`
	Transcript        string       `json:"transcript,omitempty"`
	Reply             *Reply       `json:"reply,omitempty"`
	Tip               string       `json:"tip,omitempty"`
	Sentiment         Sentiment    `json:"sentiment"`
	Mood              int          `json:"mood"`
	Draft             *Feedback    `json:"draft,omitempty"`
	Playing           bool         `json:"playing"`
	Saved             bool         `json:"saved"`
	Notice            string       `json:"notice,omitempty"`
	Wisdom            []WisdomCard `json:"wisdom,omitempty"`
	CaptureAvailable  bool         `json:"captureAvailable"`
	PlaybackAvailable bool         `json:"playbackAvailable"`
	Attempt           uint64       `json:"attempt"`
}
