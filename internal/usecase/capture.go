package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ashasphere/internal/domain"
	"ashasphere/internal/logging"
	"ashasphere/internal/ports"
)

const streamFinishTimeout = 4 * time.Second

// CaptureConfig controls microphone capture and streaming transcription.
type CaptureConfig struct {
	Audio      ports.AudioConfig
	Streaming  ports.StreamingConfig
	ChunkSize  int
	MaxCapture time.Duration
	// FinishTimeout bounds how long the provider may take to flush results
	// after the microphone stops.
	FinishTimeout time.Duration
}

// CaptureCoordinator runs one speech-to-text session at a time: microphone
// audio is pumped into a streaming provider, snapshots of the transcript
// are reported as they grow, and the session ends with exactly one final or
// failed event unless it is cancelled first.
type CaptureCoordinator struct {
	audio     ports.AudioCapture
	provider  ports.TranscriptionProvider
	rules     ports.TranscriptRules
	logger    logging.Logger
	cfg       CaptureConfig
	available bool

	mu      sync.Mutex
	current *captureSession
}

// NewCaptureCoordinator builds a coordinator. available is the capability
// flag computed once at startup; when false every Start fails with
// domain.ErrCaptureUnavailable.
func NewCaptureCoordinator(
	audio ports.AudioCapture,
	provider ports.TranscriptionProvider,
	rules ports.TranscriptRules,
	logger logging.Logger,
	cfg CaptureConfig,
	available bool,
) *CaptureCoordinator {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.FinishTimeout <= 0 {
		cfg.FinishTimeout = streamFinishTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &CaptureCoordinator{
		audio:     audio,
		provider:  provider,
		rules:     rules,
		logger:    logger.With("component", "capture"),
		cfg:       cfg,
		available: available && audio != nil && provider != nil,
	}
}

func (c *CaptureCoordinator) Available() bool {
	return c.available
}

// Start opens the transcription stream and the microphone, then returns
// while the session runs in the background. listener is called from the
// session goroutine and must not call Cancel.
func (c *CaptureCoordinator) Start(ctx context.Context, listener ports.CaptureListener) error {
	if !c.available {
		return domain.ErrCaptureUnavailable
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	session := &captureSession{
		cancel:     cancel,
		listener:   listener,
		aggregator: newTranscriptAggregator(),
		done:       make(chan struct{}),
	}

	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		cancel()
		return domain.ErrInvalidState
	}
	c.current = session
	c.mu.Unlock()

	stream, err := c.provider.StartStreaming(sessionCtx, c.cfg.Streaming)
	if err != nil {
		c.abandon(session)
		return fmt.Errorf("%w: %v", domain.ErrCaptureFailed, err)
	}

	mic, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		c.abandon(session)
		return fmt.Errorf("%w: %v", domain.ErrCaptureFailed, err)
	}

	session.attach(mic, stream)
	if session.isCancelled() {
		session.teardown()
		c.abandon(session)
		close(session.done)
		return context.Canceled
	}

	go c.run(sessionCtx, session)
	return nil
}

// Cancel discards the active session without a final event and waits for
// its devices to shut down. It is a no-op when nothing is running.
func (c *CaptureCoordinator) Cancel() {
	c.mu.Lock()
	session := c.current
	c.mu.Unlock()
	if session == nil {
		return
	}

	session.markCancelled()
	session.teardown()
	if session.hasStarted() {
		<-session.done
	}
}

func (c *CaptureCoordinator) abandon(session *captureSession) {
	session.cancel()
	c.mu.Lock()
	if c.current == session {
		c.current = nil
	}
	c.mu.Unlock()
}

func (c *CaptureCoordinator) run(ctx context.Context, session *captureSession) {
	event, ok := c.capture(ctx, session)
	c.abandon(session)
	close(session.done)
	if ok {
		session.emit(event)
	}
}

// capture drives the session to completion and returns its closing event.
// ok is false for a cancelled session.
func (c *CaptureCoordinator) capture(ctx context.Context, session *captureSession) (domain.CaptureEvent, bool) {
	if c.cfg.MaxCapture > 0 {
		timer := time.AfterFunc(c.cfg.MaxCapture, func() {
			c.logger.Info(ctx, "maximum capture length reached")
			session.stopMicrophone()
		})
		defer timer.Stop()
	}

	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		defer session.stopMicrophone()
		for event := range session.stream.Events() {
			if session.aggregator.Add(event) {
				session.emit(domain.CaptureEvent{Kind: domain.CaptureEventInterim, Text: session.aggregator.Text()})
			}
			if event.IsSpeechFinal {
				session.stopMicrophone()
			}
		}
	}()

	pumpErr := pumpAudioChunks(session.mic, session.stream, c.cfg.ChunkSize, session.micStopped)
	streamErr := waitForStream(session.stream, c.cfg.FinishTimeout)
	<-eventsDone
	session.stopMicrophone()

	if session.isCancelled() {
		c.logger.Debug(ctx, "capture cancelled")
		return domain.CaptureEvent{}, false
	}
	if err := errors.Join(pumpErr, streamErr); err != nil {
		c.logger.Warn(ctx, "capture failed", "error", err)
		return failedCapture(err.Error()), true
	}

	raw := session.aggregator.Text()
	if raw == "" {
		return failedCapture("no speech recognized"), true
	}

	final := raw
	if c.rules != nil {
		transformed, err := c.rules.Apply(raw)
		if err != nil {
			c.logger.Warn(ctx, "transcript rules failed, keeping raw text", "error", err)
		} else if transformed != "" {
			final = transformed
		}
	}
	return domain.CaptureEvent{Kind: domain.CaptureEventFinal, Text: final}, true
}

func failedCapture(detail string) domain.CaptureEvent {
	return domain.CaptureEvent{
		Kind: domain.CaptureEventFailed,
		Err:  fmt.Errorf("%w: %s", domain.ErrCaptureFailed, detail),
	}
}
