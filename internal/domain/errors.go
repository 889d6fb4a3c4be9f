package domain

import "errors"

// ErrCaptureUnavailable is returned when no speech capture device is configured.
var ErrCaptureUnavailable = errors.New("speech capture is unavailable")

// ErrCaptureFailed reports a capture session that ended without a transcript.
var ErrCaptureFailed = errors.New("speech capture failed")

// ErrPlaybackUnavailable is returned when no speech synthesizer is configured.
var ErrPlaybackUnavailable = errors.New("speech playback is unavailable")

// ErrReplyTransport wraps reply service failures that were absorbed into a fallback reply.
var ErrReplyTransport = errors.New("reply service transport failure")

// ErrInvalidState indicates an intent that the current stage does not accept.
var ErrInvalidState = errors.New("invalid session state")

// ErrEmptyTranscript is returned when a reply is requested for blank text.
var ErrEmptyTranscript = errors.New("transcript is empty")

// ErrNoFeedbackSelection is returned when feedback is submitted before an emoji was picked.
var ErrNoFeedbackSelection = errors.New("no feedback emoji selected")

// ErrInvalidHelpfulness is returned for helpfulness scores outside 1..5.
var ErrInvalidHelpfulness = errors.New("helpfulness must be between 1 and 5")

// ErrCorruptRecord is returned when a stored record cannot be decoded.
var ErrCorruptRecord = errors.New("stored record is corrupt")
