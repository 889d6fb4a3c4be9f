package usecase

import (
	"sync"

	"ashasphere/internal/domain"
	"ashasphere/internal/ports"
)

type captureSession struct {
	cancel   func()
	listener ports.CaptureListener

	mu        sync.Mutex
	mic       ports.AudioSession
	stream    ports.StreamingSession
	started   bool
	cancelled bool
	stopping  bool

	stopOnce   sync.Once
	aggregator *transcriptAggregator
	done       chan struct{}
}

func (s *captureSession) attach(mic ports.AudioSession, stream ports.StreamingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mic = mic
	s.stream = stream
	s.started = true
}

func (s *captureSession) hasStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *captureSession) markCancelled() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
	s.cancel()
}

func (s *captureSession) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *captureSession) micStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// stopMicrophone ends the utterance; the pump then drains and half-closes
// the stream.
func (s *captureSession) stopMicrophone() {
	s.mu.Lock()
	mic := s.mic
	s.stopping = true
	s.mu.Unlock()
	if mic == nil {
		return
	}
	s.stopOnce.Do(func() {
		_ = mic.Stop()
	})
}

// teardown stops both devices immediately.
func (s *captureSession) teardown() {
	s.stopMicrophone()
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()
	if stream != nil {
		_ = stream.Close()
	}
}

func (s *captureSession) emit(event domain.CaptureEvent) {
	if s.isCancelled() || s.listener == nil {
		return
	}
	s.listener(event)
}
