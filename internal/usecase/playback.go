package usecase

import (
	"context"
	"sync"

	"ashasphere/internal/domain"
	"ashasphere/internal/logging"
	"ashasphere/internal/ports"
)

// PlaybackCoordinator speaks one utterance at a time. A new Play supersedes
// the current utterance, and every Play reports started then ended exactly
// once.
type PlaybackCoordinator struct {
	speaker   ports.Speaker
	logger    logging.Logger
	available bool

	mu      sync.Mutex
	current *utterance
}

type utterance struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPlaybackCoordinator(speaker ports.Speaker, logger logging.Logger, available bool) *PlaybackCoordinator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PlaybackCoordinator{
		speaker:   speaker,
		logger:    logger.With("component", "playback"),
		available: available && speaker != nil,
	}
}

func (p *PlaybackCoordinator) Available() bool {
	return p.available
}

// Play stops any current utterance, waits for its ended event, then starts
// text in the background.
func (p *PlaybackCoordinator) Play(ctx context.Context, text string, listener ports.PlaybackListener) error {
	if !p.available {
		return domain.ErrPlaybackUnavailable
	}

	playCtx, cancel := context.WithCancel(ctx)
	next := &utterance{cancel: cancel, done: make(chan struct{})}

	p.mu.Lock()
	previous := p.current
	p.current = next
	p.mu.Unlock()

	if previous != nil {
		previous.cancel()
		<-previous.done
	}

	go p.speak(playCtx, next, text, listener)
	return nil
}

// Stop interrupts the current utterance and waits for it to end.
func (p *PlaybackCoordinator) Stop() {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if current == nil {
		return
	}
	current.cancel()
	<-current.done
}

func (p *PlaybackCoordinator) speak(ctx context.Context, u *utterance, text string, listener ports.PlaybackListener) {
	defer close(u.done)

	notify := func(kind domain.PlaybackEventKind) {
		if listener != nil {
			listener(kind)
		}
	}

	notify(domain.PlaybackStarted)
	if err := p.speaker.Speak(ctx, text); err != nil && ctx.Err() == nil {
		p.logger.Warn(ctx, "speech synthesis failed", "error", err)
	}
	u.cancel()

	p.mu.Lock()
	if p.current == u {
		p.current = nil
	}
	p.mu.Unlock()

	notify(domain.PlaybackEnded)
}
